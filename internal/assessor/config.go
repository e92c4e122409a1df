package assessor

// DefaultRejectThreshold is the heuristic score at which a URL is rejected
// without consulting the model.
const DefaultRejectThreshold = 2

// Config holds runtime settings for the assessor.
type Config struct {
	// RejectThreshold is the minimum score that short-circuits to a phishing verdict.
	RejectThreshold int `yaml:"reject_threshold"`

	// RuleWeights overrides the weight of a rule by id (optional).
	RuleWeights map[string]int `yaml:"rule_weights"`
}

func DefaultConfig() Config {
	return Config{RejectThreshold: DefaultRejectThreshold}
}
