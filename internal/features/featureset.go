package features

import (
	"bytes"
	"encoding/json"
)

// FeatureSet is an insertion-ordered mapping from feature name to value.
// A FeatureSet is built for one classification and not shared.
type FeatureSet struct {
	names  []string
	values map[string]float64
}

func NewFeatureSet() *FeatureSet {
	return &FeatureSet{values: make(map[string]float64)}
}

// Set assigns name. New names are appended to the order; existing names keep
// their position.
func (f *FeatureSet) Set(name string, v float64) {
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = v
}

func (f *FeatureSet) SetBool(name string, b bool) {
	if b {
		f.Set(name, 1)
		return
	}
	f.Set(name, 0)
}

func (f *FeatureSet) Get(name string) (float64, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Value returns the named feature or 0 when absent.
func (f *FeatureSet) Value(name string) float64 {
	return f.values[name]
}

func (f *FeatureSet) Has(name string) bool {
	_, ok := f.values[name]
	return ok
}

func (f *FeatureSet) Len() int { return len(f.names) }

// Names returns a copy of the names in insertion order.
func (f *FeatureSet) Names() []string {
	return append([]string(nil), f.names...)
}

// Merge copies other's entries into f, in other's order.
func (f *FeatureSet) Merge(other *FeatureSet) {
	if other == nil {
		return
	}
	for _, n := range other.names {
		f.Set(n, other.values[n])
	}
}

func (f *FeatureSet) Clone() *FeatureSet {
	c := &FeatureSet{
		names:  append([]string(nil), f.names...),
		values: make(map[string]float64, len(f.values)),
	}
	for k, v := range f.values {
		c.values[k] = v
	}
	return c
}

// Vector lays the features out in order, filling names f does not carry with 0.
func (f *FeatureSet) Vector(order []string) []float64 {
	out := make([]float64, len(order))
	for i, name := range order {
		out[i] = f.values[name]
	}
	return out
}

// Missing lists the names in order that f does not carry.
func (f *FeatureSet) Missing(order []string) []string {
	var out []string
	for _, name := range order {
		if _, ok := f.values[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// MarshalJSON writes an object whose keys follow insertion order.
func (f *FeatureSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
