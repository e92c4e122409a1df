package classifier

import (
	"errors"
	"fmt"
)

const (
	TypeLogisticRegression = "logistic_regression"
	TypeRandomForest       = "random_forest"
	TypeLinearSVM          = "linear_svm"
	TypeThresholdRule      = "threshold_rule"
)

// LogisticRegression exposes probability, decision score and hard prediction.
type LogisticRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (m *LogisticRegression) DecisionFunction(x []float64) (float64, error) {
	z, err := dot(m.Coef, x)
	if err != nil {
		return 0, err
	}
	return z + m.Intercept, nil
}

func (m *LogisticRegression) PredictProba(x []float64) (float64, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	return sigmoid(z), nil
}

func (m *LogisticRegression) Predict(x []float64) (int, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func (m *LogisticRegression) validate(nFeatures int) error {
	if len(m.Coef) != nFeatures {
		return fmt.Errorf("logistic_regression has %d coefficients for %d features", len(m.Coef), nFeatures)
	}
	return nil
}

// TreeNode is one node of a decision tree in array form. A node with Left < 0
// is a leaf; Value holds per-class sample counts, class 1 being phishing.
// Internal nodes send x[Feature] <= Threshold to Left.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// leafFraction walks the tree and returns the class-1 fraction of the leaf reached.
func (t *Tree) leafFraction(x []float64) (float64, error) {
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if i < 0 || i >= len(t.Nodes) {
			return 0, fmt.Errorf("node index %d out of range", i)
		}
		n := t.Nodes[i]
		if n.Left < 0 {
			var total float64
			for _, v := range n.Value {
				total += v
			}
			if total <= 0 || len(n.Value) < 2 {
				return 0, nil
			}
			return n.Value[1] / total, nil
		}
		if n.Feature < 0 || n.Feature >= len(x) {
			return 0, fmt.Errorf("feature index %d out of range", n.Feature)
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return 0, errors.New("tree contains a cycle")
}

// RandomForest averages the leaf class-1 fractions of its trees.
type RandomForest struct {
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

func (m *RandomForest) PredictProba(x []float64) (float64, error) {
	if m.NFeatures > 0 && len(x) != m.NFeatures {
		return 0, fmt.Errorf("dimension mismatch: model expects %d features, got %d", m.NFeatures, len(x))
	}
	if len(m.Trees) == 0 {
		return 0, errors.New("random_forest has no trees")
	}
	var sum float64
	for i := range m.Trees {
		f, err := m.Trees[i].leafFraction(x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += f
	}
	return sum / float64(len(m.Trees)), nil
}

func (m *RandomForest) Predict(x []float64) (int, error) {
	p, err := m.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func (m *RandomForest) validate(nFeatures int) error {
	if len(m.Trees) == 0 {
		return errors.New("random_forest has no trees")
	}
	if m.NFeatures > 0 && m.NFeatures != nFeatures {
		return fmt.Errorf("random_forest trained on %d features, feature list has %d", m.NFeatures, nFeatures)
	}
	for ti, t := range m.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.Left >= 0 && (n.Feature < 0 || n.Feature >= nFeatures) {
				return fmt.Errorf("tree %d node %d splits on feature %d", ti, ni, n.Feature)
			}
		}
	}
	return nil
}

// LinearSVM has no probability output; callers get its signed margin.
type LinearSVM struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (m *LinearSVM) DecisionFunction(x []float64) (float64, error) {
	z, err := dot(m.Coef, x)
	if err != nil {
		return 0, err
	}
	return z + m.Intercept, nil
}

func (m *LinearSVM) Predict(x []float64) (int, error) {
	z, err := m.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

func (m *LinearSVM) validate(nFeatures int) error {
	if len(m.Coef) != nFeatures {
		return fmt.Errorf("linear_svm has %d coefficients for %d features", len(m.Coef), nFeatures)
	}
	return nil
}

// ThresholdRule flags a sample when one scaled feature reaches a cutoff.
// It only offers a hard prediction.
type ThresholdRule struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
}

func (m *ThresholdRule) Predict(x []float64) (int, error) {
	if m.Feature < 0 || m.Feature >= len(x) {
		return 0, fmt.Errorf("feature index %d out of range", m.Feature)
	}
	if x[m.Feature] >= m.Threshold {
		return 1, nil
	}
	return 0, nil
}

func (m *ThresholdRule) validate(nFeatures int) error {
	if m.Feature < 0 || m.Feature >= nFeatures {
		return fmt.Errorf("threshold_rule feature %d out of range for %d features", m.Feature, nFeatures)
	}
	return nil
}
