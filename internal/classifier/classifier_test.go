package classifier_test

import (
	"math"
	"testing"

	"github.com/raysh454/phishguard/internal/classifier"
	"github.com/raysh454/phishguard/internal/testutil"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEvaluate_PrefersProbability(t *testing.T) {
	t.Parallel()
	m := &classifier.LogisticRegression{Coef: []float64{1, -1}, Intercept: 0}
	s, err := classifier.Evaluate(m, []float64{2, 2})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if s.Kind != classifier.KindProbability || !approx(s.Value, 0.5) {
		t.Errorf("got %+v, want probability 0.5", s)
	}
}

func TestEvaluate_FallsBackToDecision(t *testing.T) {
	t.Parallel()
	m := &classifier.LinearSVM{Coef: []float64{1, 1}, Intercept: -3}
	s, err := classifier.Evaluate(m, []float64{1, 1})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if s.Kind != classifier.KindDecision || !approx(s.Value, -1) {
		t.Errorf("got %+v, want decision -1", s)
	}
}

func TestEvaluate_FallsBackToHardPrediction(t *testing.T) {
	t.Parallel()
	m := &testutil.StubHardModel{Label: 1}
	s, err := classifier.Evaluate(m, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if s.Kind != classifier.KindHard || s.Value != 1 {
		t.Errorf("got %+v", s)
	}
	if m.Calls() != 1 {
		t.Errorf("calls = %d", m.Calls())
	}
}

func TestEvaluate_OutOfRangeProbabilityFallsThrough(t *testing.T) {
	t.Parallel()
	m := &testutil.StubClassifier{Probability: 1.7}
	s, err := classifier.Evaluate(m, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if s.Kind != classifier.KindHard || s.Value != 1 {
		t.Errorf("expected hard fallback, got %+v", s)
	}
}

func TestEvaluate_NilModel(t *testing.T) {
	t.Parallel()
	if _, err := classifier.Evaluate(nil, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestLogisticRegression_DimensionMismatch(t *testing.T) {
	t.Parallel()
	m := &classifier.LogisticRegression{Coef: []float64{1, 2, 3}}
	if _, err := m.PredictProba([]float64{1}); err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestRandomForest_MeanLeafFraction(t *testing.T) {
	t.Parallel()
	// Tree A: x0 <= 0.5 -> leaf [3,1] (0.25) else leaf [0,4] (1.0)
	// Tree B: single leaf [1,1] (0.5)
	rf := &classifier.RandomForest{Trees: []classifier.Tree{
		{Nodes: []classifier.TreeNode{
			{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
			{Left: -1, Right: -1, Value: []float64{3, 1}},
			{Left: -1, Right: -1, Value: []float64{0, 4}},
		}},
		{Nodes: []classifier.TreeNode{{Left: -1, Right: -1, Value: []float64{1, 1}}}},
	}}

	tests := []struct {
		x    []float64
		want float64
	}{
		{[]float64{0.2}, (0.25 + 0.5) / 2},
		{[]float64{0.5}, (0.25 + 0.5) / 2},
		{[]float64{0.9}, (1.0 + 0.5) / 2},
	}
	for _, tt := range tests {
		got, err := rf.PredictProba(tt.x)
		if err != nil {
			t.Fatalf("PredictProba(%v): %v", tt.x, err)
		}
		if !approx(got, tt.want) {
			t.Errorf("PredictProba(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
	if label, _ := rf.Predict([]float64{0.9}); label != 1 {
		t.Errorf("expected phishing label for right branch")
	}
}

func TestRandomForest_CycleDetected(t *testing.T) {
	t.Parallel()
	rf := &classifier.RandomForest{Trees: []classifier.Tree{{Nodes: []classifier.TreeNode{
		{Feature: 0, Threshold: 1, Left: 0, Right: 0},
	}}}}
	if _, err := rf.PredictProba([]float64{0}); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestLinearSVM_Predict(t *testing.T) {
	t.Parallel()
	m := &classifier.LinearSVM{Coef: []float64{1}, Intercept: -1}
	if l, _ := m.Predict([]float64{2}); l != 1 {
		t.Error("positive margin should predict 1")
	}
	if l, _ := m.Predict([]float64{0}); l != 0 {
		t.Error("negative margin should predict 0")
	}
}

func TestThresholdRule_Predict(t *testing.T) {
	t.Parallel()
	m := &classifier.ThresholdRule{Feature: 1, Threshold: 0.7}
	if l, _ := m.Predict([]float64{0, 0.7}); l != 1 {
		t.Error("value at threshold should predict 1")
	}
	if l, _ := m.Predict([]float64{1, 0.69}); l != 0 {
		t.Error("value below threshold should predict 0")
	}
	if _, err := m.Predict([]float64{1}); err == nil {
		t.Error("expected out of range error")
	}
}

func TestScalers(t *testing.T) {
	t.Parallel()
	mm := &classifier.MinMaxScaler{Min: []float64{0, -1}, Scale: []float64{0.5, 2}}
	got, err := mm.Transform([]float64{4, 1})
	if err != nil {
		t.Fatalf("minmax: %v", err)
	}
	if got[0] != 2 || got[1] != 1 {
		t.Errorf("minmax = %v", got)
	}

	st := &classifier.StandardScaler{Mean: []float64{1, 5}, Scale: []float64{2, 0}}
	got, err = st.Transform([]float64{5, 7})
	if err != nil {
		t.Fatalf("standard: %v", err)
	}
	if got[0] != 2 || got[1] != 2 {
		t.Errorf("standard = %v", got)
	}

	if _, err := mm.Transform([]float64{1}); err == nil {
		t.Error("expected dimension error")
	}

	in := []float64{1, 2}
	id, _ := classifier.IdentityScaler{}.Transform(in)
	id[0] = 9
	if in[0] != 1 {
		t.Error("identity scaler must not alias its input")
	}
}
