package engine

const (
	DefaultTrustedThreshold = 0.9
	DefaultThreshold        = 0.5
	DefaultMaxConcurrency   = 4
)

// Config holds the decision thresholds and batch limits.
type Config struct {
	// TrustedThreshold applies when the final registrable domain is trusted and
	// the final scheme is https.
	TrustedThreshold float64
	// DefaultThreshold applies otherwise.
	DefaultThreshold float64

	// DecisionNegativeIsPhishing selects the sign convention used when a model
	// only offers a raw decision score. This is a fallback policy, not a
	// calibrated property of the model.
	DecisionNegativeIsPhishing bool

	// MaxConcurrency bounds parallel classifications in ClassifyBatch.
	MaxConcurrency int
}

func DefaultConfig() Config {
	return Config{
		TrustedThreshold:           DefaultTrustedThreshold,
		DefaultThreshold:           DefaultThreshold,
		DecisionNegativeIsPhishing: true,
		MaxConcurrency:             DefaultMaxConcurrency,
	}
}

func (c Config) withDefaults() Config {
	if c.TrustedThreshold <= 0 || c.TrustedThreshold > 1 {
		c.TrustedThreshold = DefaultTrustedThreshold
	}
	if c.DefaultThreshold <= 0 || c.DefaultThreshold > 1 {
		c.DefaultThreshold = DefaultThreshold
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	return c
}
