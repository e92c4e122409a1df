// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raysh454/phishguard/internal/classifier"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func NewDummyLogger() *DummyLogger { return &DummyLogger{} }

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// Contains reports whether any recorded message at any level contains sub.
func (l *DummyLogger) Contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, msgs := range [][]string{l.Debugs, l.Infos, l.Warns, l.Errors} {
		for _, m := range msgs {
			if strings.Contains(m, sub) {
				return true
			}
		}
	}
	return false
}

// WarnCount returns the number of Warn calls so far.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyPage is a canned response served by DummyWebClient.
type DummyPage struct {
	Body        string
	ContentType string
	StatusCode  int
	// FinalURL simulates a redirect when set.
	FinalURL string
}

// DummyWebClient implements webclient.WebClient.
// URLs found in Pages get that page; any other URL gets an empty HTML document.
// Set FailURLs[url] = true to force an error for a specific URL, or FailAll to
// fail every request.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Pages         map[string]DummyPage
	FailURLs      map[string]bool
	FailAll       bool

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if d.FailAll || (d.FailURLs != nil && d.FailURLs[req.URL]) {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	page, ok := d.Pages[req.URL]
	if !ok {
		page = DummyPage{Body: "<html><head><title>ok</title></head><body></body></html>"}
	}
	if page.ContentType == "" {
		page.ContentType = "text/html; charset=utf-8"
	}
	if page.StatusCode == 0 {
		page.StatusCode = http.StatusOK
	}
	final, redirects := req.URL, 0
	if page.FinalURL != "" && page.FinalURL != req.URL {
		final, redirects = page.FinalURL, 1
	}

	return &webclient.Response{
		Request:     req,
		FinalURL:    final,
		Redirects:   redirects,
		ContentType: page.ContentType,
		Headers:     http.Header{"Content-Type": {page.ContentType}},
		Body:        []byte(page.Body),
		StatusCode:  page.StatusCode,
		FetchedAt:   time.Now(),
	}, nil
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns how many requests reached the client.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── Classifier ────────────────────────────────────────────────────────

// StubClassifier returns a fixed probability and counts invocations.
type StubClassifier struct {
	Probability float64
	calls       atomic.Int64
}

func (s *StubClassifier) PredictProba(_ []float64) (float64, error) {
	s.calls.Add(1)
	return s.Probability, nil
}

func (s *StubClassifier) Predict(_ []float64) (int, error) {
	s.calls.Add(1)
	if s.Probability >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func (s *StubClassifier) Calls() int64 { return s.calls.Load() }

// StubDecisionModel offers a decision score and a hard prediction, no probability.
type StubDecisionModel struct {
	Score float64
	calls atomic.Int64
}

func (s *StubDecisionModel) DecisionFunction(_ []float64) (float64, error) {
	s.calls.Add(1)
	return s.Score, nil
}

func (s *StubDecisionModel) Predict(_ []float64) (int, error) {
	s.calls.Add(1)
	if s.Score > 0 {
		return 1, nil
	}
	return 0, nil
}

func (s *StubDecisionModel) Calls() int64 { return s.calls.Load() }

// StubHardModel only offers a hard prediction.
type StubHardModel struct {
	Label int
	calls atomic.Int64
}

func (s *StubHardModel) Predict(_ []float64) (int, error) {
	s.calls.Add(1)
	return s.Label, nil
}

func (s *StubHardModel) Calls() int64 { return s.calls.Load() }

// CountingScaler passes vectors through and records the last one it saw.
type CountingScaler struct {
	mu    sync.Mutex
	calls int
	Last  []float64
}

func (s *CountingScaler) Transform(x []float64) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.Last = append([]float64(nil), x...)
	return x, nil
}

func (s *CountingScaler) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StaticArtifacts serves fixed artifacts, or Err when set.
type StaticArtifacts struct {
	Artifacts *classifier.Artifacts
	Err       error
	loads     atomic.Int64
}

func (s *StaticArtifacts) Load(_ context.Context) (*classifier.Artifacts, error) {
	s.loads.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Artifacts == nil {
		return nil, errors.New("no artifacts configured")
	}
	return s.Artifacts, nil
}

func (s *StaticArtifacts) Loads() int64 { return s.loads.Load() }

// ─── Artifact files ────────────────────────────────────────────────────

// WriteArtifacts writes model.json, scaler.json and features.txt into dir.
// A nil model or scaler skips that file.
func WriteArtifacts(t *testing.T, dir string, model, scaler any, features []string) classifier.Paths {
	t.Helper()
	write := func(name string, v any) {
		t.Helper()
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if model != nil {
		write(classifier.DefaultModelFile, model)
	}
	if scaler != nil {
		write(classifier.DefaultScalerFile, scaler)
	}
	if features != nil {
		body := strings.Join(features, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(dir, classifier.DefaultFeaturesFile), []byte(body), 0o644); err != nil {
			t.Fatalf("write features: %v", err)
		}
	}
	return classifier.Paths{Dir: dir}
}

// ConstantLogisticModel is a logistic_regression document with zero weights
// whose probability is p for every input.
func ConstantLogisticModel(nFeatures int, p float64) map[string]any {
	return map[string]any{
		"type":      classifier.TypeLogisticRegression,
		"coef":      make([]float64, nFeatures),
		"intercept": math.Log(p / (1 - p)),
	}
}

// IdentityMinMaxScaler is a minmax scaler document that leaves values unchanged.
func IdentityMinMaxScaler(nFeatures int) map[string]any {
	scale := make([]float64, nFeatures)
	for i := range scale {
		scale[i] = 1
	}
	return map[string]any{
		"type":  classifier.ScalerMinMax,
		"min":   make([]float64, nFeatures),
		"scale": scale,
	}
}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
