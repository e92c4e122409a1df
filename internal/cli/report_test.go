package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/raysh454/phishguard/internal/cli"
	"github.com/raysh454/phishguard/internal/engine"
	"github.com/raysh454/phishguard/internal/model"
)

func phishingItem() engine.BatchItem {
	return engine.BatchItem{Index: 0, URL: "http://paypa1-login.secure-account.tk", Verdict: &model.Verdict{
		Label:          model.Phishing,
		URL:            "http://paypa1-login.secure-account.tk",
		Stage:          model.StageHeuristic,
		HeuristicScore: 4,
		Info:           []string{"URL does not use HTTPS.", "URL flagged by high-risk heuristic pre-filter."},
	}}
}

func legitItem() engine.BatchItem {
	return engine.BatchItem{Index: 1, URL: "https://example.com", Verdict: &model.Verdict{
		Label:            model.Legitimate,
		URL:              "https://example.com",
		Stage:            model.StageModel,
		ScoreKind:        "probability",
		Score:            0.12,
		Threshold:        0.5,
		RegisteredDomain: "example.com",
		Info:             []string{"Model score 0.1200 vs threshold 0.50 for domain 'example.com' (trusted: false)."},
	}}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	failed := engine.BatchItem{URL: "x", Err: errors.New("model artifacts unavailable")}
	tests := []struct {
		name  string
		items []engine.BatchItem
		want  int
	}{
		{"legitimate", []engine.BatchItem{legitItem()}, cli.ExitLegitimate},
		{"phishing", []engine.BatchItem{legitItem(), phishingItem()}, cli.ExitPhishing},
		{"error wins", []engine.BatchItem{phishingItem(), failed}, cli.ExitError},
		{"missing verdict", []engine.BatchItem{{URL: "x"}}, cli.ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cli.ExitCode(tt.items); got != tt.want {
				t.Errorf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteJSON_SingleObject(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := cli.WriteJSON(&buf, []engine.BatchItem{phishingItem()}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got model.Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a Result object: %v\n%s", err, buf.String())
	}
	if got.Prediction != model.PhishingLabel || got.URL != "http://paypa1-login.secure-account.tk" || len(got.Info) != 2 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestWriteJSON_ArrayWithErrors(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	items := []engine.BatchItem{legitItem(), {URL: "x", Err: errors.New("boom")}}
	if err := cli.WriteJSON(&buf, items); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not an array: %v", err)
	}
	if len(got) != 2 || got[0]["prediction"] != model.LegitimateLabel || got[1]["error"] != "boom" {
		t.Errorf("unexpected output %v", got)
	}
}

func TestRenderReport(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	items := []engine.BatchItem{phishingItem(), legitItem(), {URL: "https://broken.example", Err: errors.New("model artifacts unavailable")}}
	if err := cli.RenderReport(&buf, items); err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"paypa1-login.secure-account.tk",
		"URL flagged by high-risk heuristic pre-filter.",
		"example.com",
		"0.1200",
		"model artifacts unavailable",
		"Summary",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
