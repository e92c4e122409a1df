package classifier

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/raysh454/phishguard/internal/logging"
)

const (
	DefaultModelFile    = "model.json"
	DefaultScalerFile   = "scaler.json"
	DefaultFeaturesFile = "features.txt"
)

// Paths locates the three artifact files. Relative file names resolve against Dir.
type Paths struct {
	Dir      string
	Model    string
	Scaler   string
	Features string
}

func (p Paths) resolve(name, def string) string {
	if name == "" {
		name = def
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.Dir, name)
}

func (p Paths) ModelPath() string    { return p.resolve(p.Model, DefaultModelFile) }
func (p Paths) ScalerPath() string   { return p.resolve(p.Scaler, DefaultScalerFile) }
func (p Paths) FeaturesPath() string { return p.resolve(p.Features, DefaultFeaturesFile) }

// Load reads and validates all three artifacts. Every failure wraps
// ErrArtifactsUnavailable and names the offending file.
func Load(paths Paths) (*Artifacts, error) {
	// Check presence of all three before decoding anything.
	for _, p := range []string{paths.ModelPath(), paths.ScalerPath(), paths.FeaturesPath()} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrArtifactsUnavailable, p, err)
		}
	}

	features, err := LoadFeatureList(paths.FeaturesPath())
	if err != nil {
		return nil, err
	}

	modelData, err := os.ReadFile(paths.ModelPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactsUnavailable, paths.ModelPath(), err)
	}
	model, err := DecodeModel(modelData, len(features))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactsUnavailable, paths.ModelPath(), err)
	}

	scalerData, err := os.ReadFile(paths.ScalerPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactsUnavailable, paths.ScalerPath(), err)
	}
	scaler, err := DecodeScaler(scalerData, len(features))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactsUnavailable, paths.ScalerPath(), err)
	}

	return &Artifacts{Model: model, Scaler: scaler, Features: features}, nil
}

// LoadFeatureList reads one feature name per line. Surrounding whitespace and
// blank lines are dropped.
func LoadFeatureList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactsUnavailable, path, err)
	}
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrArtifactsUnavailable, path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s: feature list is empty", ErrArtifactsUnavailable, path)
	}
	return names, nil
}

type envelope struct {
	Type string `json:"type"`
}

type validator interface {
	validate(nFeatures int) error
}

// DecodeModel decodes a model document and checks it against the feature count.
func DecodeModel(data []byte, nFeatures int) (Predictor, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	var m interface {
		Predictor
		validator
	}
	switch strings.ToLower(env.Type) {
	case TypeLogisticRegression:
		m = &LogisticRegression{}
	case TypeRandomForest:
		m = &RandomForest{}
	case TypeLinearSVM:
		m = &LinearSVM{}
	case TypeThresholdRule:
		m = &ThresholdRule{}
	default:
		return nil, fmt.Errorf("unknown model type %q", env.Type)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	if err := m.validate(nFeatures); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeScaler decodes a scaler document and checks it against the feature count.
func DecodeScaler(data []byte, nFeatures int) (Scaler, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	var s interface {
		Scaler
		validator
	}
	switch strings.ToLower(env.Type) {
	case ScalerMinMax:
		s = &MinMaxScaler{}
	case ScalerStandard:
		s = &StandardScaler{}
	case ScalerIdentity:
		return IdentityScaler{}, nil
	default:
		return nil, fmt.Errorf("unknown scaler type %q", env.Type)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	if err := s.validate(nFeatures); err != nil {
		return nil, err
	}
	return s, nil
}

// Loader hands out artifacts, optionally caching the first successful load for
// the life of the process. Failed loads are never cached.
type Loader struct {
	paths  Paths
	cache  bool
	logger logging.Logger

	mu     sync.Mutex
	cached *Artifacts
	loads  atomic.Int64
}

func NewLoader(paths Paths, cache bool, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Loader{
		paths:  paths,
		cache:  cache,
		logger: logger.With(logging.Field{Key: "component", Value: "classifier"}),
	}
}

func (l *Loader) Load(_ context.Context) (*Artifacts, error) {
	if !l.cache {
		return l.load()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != nil {
		return l.cached, nil
	}
	a, err := l.load()
	if err != nil {
		return nil, err
	}
	l.cached = a
	return a, nil
}

// Loads reports how many times artifacts were read from disk.
func (l *Loader) Loads() int64 { return l.loads.Load() }

func (l *Loader) Paths() Paths { return l.paths }

func (l *Loader) load() (*Artifacts, error) {
	l.loads.Add(1)
	a, err := Load(l.paths)
	if err != nil {
		l.logger.Error("failed to load model artifacts", logging.Field{Key: "error", Value: err.Error()})
		return nil, err
	}
	l.logger.Info("loaded model artifacts",
		logging.Field{Key: "model", Value: l.paths.ModelPath()},
		logging.Field{Key: "model_type", Value: fmt.Sprintf("%T", a.Model)},
		logging.Field{Key: "features", Value: len(a.Features)})
	return a, nil
}
