// Package classifier loads the trained model, its feature scaler and the ordered
// feature list, and turns a scaled feature vector into a phishing score.
package classifier

import (
	"errors"
	"fmt"
	"math"
)

// ErrArtifactsUnavailable is returned when the model, scaler or feature list
// cannot be read or decoded.
var ErrArtifactsUnavailable = errors.New("model artifacts unavailable")

// Predictor is the minimum every model offers: a hard 0/1 class.
type Predictor interface {
	Predict(x []float64) (int, error)
}

// ProbabilityPredictor returns P(phishing) in [0, 1].
type ProbabilityPredictor interface {
	PredictProba(x []float64) (float64, error)
}

// DecisionScorer returns an unbounded signed margin.
type DecisionScorer interface {
	DecisionFunction(x []float64) (float64, error)
}

type Scaler interface {
	Transform(x []float64) ([]float64, error)
}

// Artifacts is one loaded model bundle. It is read-only after loading and safe
// for concurrent use.
type Artifacts struct {
	Model    Predictor
	Scaler   Scaler
	Features []string
}

type ScoreKind string

const (
	KindProbability ScoreKind = "probability"
	KindDecision    ScoreKind = "decision"
	KindHard        ScoreKind = "prediction"
)

type Score struct {
	Kind  ScoreKind
	Value float64
}

// Evaluate asks m for a probability, then a decision score, then a hard
// prediction, using the first interface m implements.
func Evaluate(m Predictor, x []float64) (Score, error) {
	if m == nil {
		return Score{}, errors.New("nil model")
	}
	if p, ok := m.(ProbabilityPredictor); ok {
		v, err := p.PredictProba(x)
		if err != nil {
			return Score{}, fmt.Errorf("predict proba: %w", err)
		}
		if !math.IsNaN(v) && v >= 0 && v <= 1 {
			return Score{Kind: KindProbability, Value: v}, nil
		}
	}
	if d, ok := m.(DecisionScorer); ok {
		v, err := d.DecisionFunction(x)
		if err != nil {
			return Score{}, fmt.Errorf("decision function: %w", err)
		}
		if !math.IsNaN(v) {
			return Score{Kind: KindDecision, Value: v}, nil
		}
	}
	label, err := m.Predict(x)
	if err != nil {
		return Score{}, fmt.Errorf("predict: %w", err)
	}
	if label != 0 {
		return Score{Kind: KindHard, Value: 1}, nil
	}
	return Score{Kind: KindHard, Value: 0}, nil
}

func dot(w, x []float64) (float64, error) {
	if len(w) != len(x) {
		return 0, fmt.Errorf("dimension mismatch: model expects %d features, got %d", len(w), len(x))
	}
	var s float64
	for i := range w {
		s += w[i] * x[i]
	}
	return s, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
