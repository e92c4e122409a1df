package assessor

import (
	"github.com/raysh454/phishguard/internal/features"
)

// Input is what the rules read: the lexical features of the URL under test and
// the hostname they were computed from.
type Input struct {
	Features *features.FeatureSet
	Hostname string
}

// Finding is the contribution of one triggered rule.
type Finding struct {
	Weight      int
	Explanation string
}

// Evaluator inspects an Input and reports a Finding when its rule triggers.
type Evaluator func(in Input) (Finding, bool)

// Rule defines a single heuristic check the assessor will run.
type Rule struct {
	ID       string // unique rule id (eg. "url:no-https")
	Severity string // "low"|"medium"|"high"
	Eval     Evaluator
}

// EvidenceItem is one triggered rule as recorded in a ScoreResult.
type EvidenceItem struct {
	RuleID      string `json:"rule_id"`
	Severity    string `json:"severity"`
	Description string `json:"description"`

	// Contribution is the weight this rule added to the score.
	Contribution int `json:"contribution"`
}

// ScoreResult is the outcome of one heuristic pass. It is not mutated after
// Score returns it.
type ScoreResult struct {
	// Score is the sum of triggered rule weights, never negative.
	Score int `json:"score"`

	// Explanations holds one entry per triggered rule, in rule order.
	Explanations []string `json:"explanations"`

	Evidence []EvidenceItem `json:"evidence,omitempty"`

	// MatchedRules lists the ids of rules that triggered.
	MatchedRules []string `json:"matched_rules,omitempty"`
}
