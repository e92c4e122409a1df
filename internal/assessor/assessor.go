// Package assessor implements the heuristic pre-filter: an ordered list of
// independent rules folded into an integer risk score and an explanation log.
package assessor

import (
	"github.com/raysh454/phishguard/internal/logging"
)

// Score folds rules over in, in order. It is pure: the same input and rules
// always produce the same result. Weights below zero are treated as zero so the
// total never decreases when a rule triggers.
func Score(in Input, rules []Rule) ScoreResult {
	res := ScoreResult{Explanations: []string{}}
	for _, r := range rules {
		if r.Eval == nil {
			continue
		}
		f, ok := r.Eval(in)
		if !ok {
			continue
		}
		w := max(f.Weight, 0)
		res.Score += w
		res.Explanations = append(res.Explanations, f.Explanation)
		res.MatchedRules = append(res.MatchedRules, r.ID)
		res.Evidence = append(res.Evidence, EvidenceItem{
			RuleID:       r.ID,
			Severity:     r.Severity,
			Description:  f.Explanation,
			Contribution: w,
		})
	}
	return res
}

// HeuristicsAssessor scores inputs against a fixed rule list and decides
// whether a score is high enough to reject without the model.
type HeuristicsAssessor struct {
	cfg    Config
	rules  []Rule
	logger logging.Logger
}

// NewHeuristicsAssessor copies rules and applies any per-rule weight overrides
// from cfg.
func NewHeuristicsAssessor(cfg Config, rules []Rule, logger logging.Logger) *HeuristicsAssessor {
	if cfg.RejectThreshold <= 0 {
		cfg.RejectThreshold = DefaultRejectThreshold
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	l := logger.With(logging.Field{Key: "component", Value: "heuristics-assessor"})

	out := make([]Rule, len(rules))
	copy(out, rules)
	for i, r := range out {
		if w, ok := cfg.RuleWeights[r.ID]; ok {
			out[i].Eval = withWeight(r.Eval, w)
		}
	}

	l.Debug("heuristics assessor constructed",
		logging.Field{Key: "rules", Value: len(out)},
		logging.Field{Key: "reject_threshold", Value: cfg.RejectThreshold})

	return &HeuristicsAssessor{cfg: cfg, rules: out, logger: l}
}

func withWeight(eval Evaluator, w int) Evaluator {
	if eval == nil {
		return nil
	}
	return func(in Input) (Finding, bool) {
		f, ok := eval(in)
		f.Weight = w
		return f, ok
	}
}

func (h *HeuristicsAssessor) Assess(in Input) ScoreResult {
	res := Score(in, h.rules)
	h.logger.Debug("heuristic score computed",
		logging.Field{Key: "hostname", Value: in.Hostname},
		logging.Field{Key: "score", Value: res.Score},
		logging.Field{Key: "matched", Value: res.MatchedRules})
	return res
}

// Rejects reports whether score meets the reject threshold.
func (h *HeuristicsAssessor) Rejects(score int) bool {
	return score >= h.cfg.RejectThreshold
}

func (h *HeuristicsAssessor) RejectThreshold() int { return h.cfg.RejectThreshold }

// Rules returns the ids of the configured rules in evaluation order.
func (h *HeuristicsAssessor) Rules() []string {
	ids := make([]string, len(h.rules))
	for i, r := range h.rules {
		ids[i] = r.ID
	}
	return ids
}
