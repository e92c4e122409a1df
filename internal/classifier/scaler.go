package classifier

import (
	"fmt"
)

const (
	ScalerMinMax   = "minmax"
	ScalerStandard = "standard"
	ScalerIdentity = "identity"
)

// MinMaxScaler maps x to x*Scale + Min per column.
type MinMaxScaler struct {
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Min) || len(x) != len(s.Scale) {
		return nil, fmt.Errorf("minmax scaler fitted on %d features, got %d", len(s.Min), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v*s.Scale[i] + s.Min[i]
	}
	return out, nil
}

func (s *MinMaxScaler) validate(nFeatures int) error {
	if len(s.Min) != nFeatures || len(s.Scale) != nFeatures {
		return fmt.Errorf("minmax scaler has %d/%d parameters for %d features", len(s.Min), len(s.Scale), nFeatures)
	}
	return nil
}

// StandardScaler maps x to (x - Mean) / Scale per column. A zero scale leaves
// the centered value as is.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) || len(x) != len(s.Scale) {
		return nil, fmt.Errorf("standard scaler fitted on %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		d := s.Scale[i]
		if d == 0 {
			d = 1
		}
		out[i] = (v - s.Mean[i]) / d
	}
	return out, nil
}

func (s *StandardScaler) validate(nFeatures int) error {
	if len(s.Mean) != nFeatures || len(s.Scale) != nFeatures {
		return fmt.Errorf("standard scaler has %d/%d parameters for %d features", len(s.Mean), len(s.Scale), nFeatures)
	}
	return nil
}

type IdentityScaler struct{}

func (IdentityScaler) Transform(x []float64) ([]float64, error) {
	return append([]float64(nil), x...), nil
}
