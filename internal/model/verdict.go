// Package model holds the result types shared by the engine and its callers.
package model

import (
	"time"
)

type Label int

const (
	Legitimate Label = iota
	Phishing
)

// Display strings returned to API and CLI callers.
const (
	PhishingLabel   = "Phishing 🚨"
	LegitimateLabel = "Legitimate ✅"
)

func (l Label) String() string {
	if l == Phishing {
		return PhishingLabel
	}
	return LegitimateLabel
}

// Name is the short machine-friendly form used in storage and logs.
func (l Label) Name() string {
	if l == Phishing {
		return "phishing"
	}
	return "legitimate"
}

// ParseLabel accepts either the short name or the display string.
func ParseLabel(s string) (Label, bool) {
	switch s {
	case "phishing", PhishingLabel:
		return Phishing, true
	case "legitimate", LegitimateLabel:
		return Legitimate, true
	}
	return Legitimate, false
}

// Stage names which part of the pipeline decided a verdict.
type Stage string

const (
	StageHeuristic Stage = "heuristic"
	StageModel     Stage = "model"
)

// Verdict is the immutable outcome of one classification.
type Verdict struct {
	Label Label
	// Info is the ordered explanation log.
	Info []string
	// URL is the scheme-normalized input.
	URL string

	FinalURL   string
	Redirected bool
	Fetched    bool

	Stage          Stage
	HeuristicScore int

	// Set when Stage is StageModel.
	ScoreKind        string
	Score            float64
	Threshold        float64
	RegisteredDomain string
	Trusted          bool

	ClassifiedAt time.Time
	Duration     time.Duration
}

func (v *Verdict) IsPhishing() bool { return v != nil && v.Label == Phishing }

// Result is the external output contract.
type Result struct {
	Prediction string   `json:"prediction" example:"Phishing 🚨"`
	Info       []string `json:"info"`
	URL        string   `json:"url" example:"http://paypa1-login.secure-account.tk"`
}

// Result converts v to the external output contract.
func (v *Verdict) Result() Result {
	return Result{
		Prediction: v.Label.String(),
		Info:       append(make([]string, 0, len(v.Info)), v.Info...),
		URL:        v.URL,
	}
}

// ErrorResult is returned in place of a Result when classification cannot run.
type ErrorResult struct {
	Error string `json:"error"`
}

func NewErrorResult(err error) ErrorResult {
	if err == nil {
		return ErrorResult{Error: "unknown error"}
	}
	return ErrorResult{Error: err.Error()}
}
