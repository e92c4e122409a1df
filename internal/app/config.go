package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/classifier"
	"github.com/raysh454/phishguard/internal/domainutil"
	"github.com/raysh454/phishguard/internal/engine"
	"github.com/raysh454/phishguard/internal/typosquat"
	"github.com/raysh454/phishguard/internal/webclient"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. PHISHGUARD_MODEL_DIR.
const EnvPrefix = "PHISHGUARD_"

type FetchConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	// Backend is one of the registered webclient backends (nethttp, chromedp).
	Backend     string `yaml:"backend"`
	ShowBrowser bool   `yaml:"show_browser"`
}

type ThresholdConfig struct {
	Trusted                    float64 `yaml:"trusted"`
	Default                    float64 `yaml:"default"`
	DecisionNegativeIsPhishing bool    `yaml:"decision_negative_is_phishing"`
}

type TyposquatConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type HistoryConfig struct {
	// Path of the SQLite verdict log. Empty disables history.
	Path string `yaml:"path"`
}

type BatchConfig struct {
	MaxConcurrency int `yaml:"max_concurrency"`
}

// Config is the full runtime configuration shared by the CLI and the server.
type Config struct {
	ModelDir       string   `yaml:"model_dir"`
	ModelFile      string   `yaml:"model_file"`
	ScalerFile     string   `yaml:"scaler_file"`
	FeaturesFile   string   `yaml:"features_file"`
	CacheArtifacts bool     `yaml:"cache_artifacts"`
	LogLevel       string   `yaml:"log_level"`
	DomainParser   string   `yaml:"domain_parser"`
	BrandWatchlist []string `yaml:"brand_watchlist"`
	TrustedDomains []string `yaml:"trusted_domains"`

	Fetch      FetchConfig     `yaml:"fetch"`
	Heuristics assessor.Config `yaml:"heuristics"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Typosquat  TyposquatConfig `yaml:"typosquat"`
	Server     ServerConfig    `yaml:"server"`
	History    HistoryConfig   `yaml:"history"`
	Batch      BatchConfig     `yaml:"batch"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ModelDir:       "predictor/ml_model",
		ModelFile:      classifier.DefaultModelFile,
		ScalerFile:     classifier.DefaultScalerFile,
		FeaturesFile:   classifier.DefaultFeaturesFile,
		CacheArtifacts: true,
		LogLevel:       "info",
		DomainParser:   domainutil.ParserPublicSuffix,
		BrandWatchlist: append([]string(nil), typosquat.DefaultBrands...),
		TrustedDomains: append([]string(nil), engine.DefaultTrustedDomains...),
		Fetch: FetchConfig{
			Enabled:      true,
			Timeout:      webclient.DefaultTimeout,
			UserAgent:    webclient.DefaultUserAgent,
			MaxBodyBytes: webclient.DefaultMaxBodyBytes,
			Backend:      string(webclient.ClientNetHTTP),
		},
		Heuristics: assessor.DefaultConfig(),
		Thresholds: ThresholdConfig{
			Trusted:                    engine.DefaultTrustedThreshold,
			Default:                    engine.DefaultThreshold,
			DecisionNegativeIsPhishing: true,
		},
		Typosquat: TyposquatConfig{Enabled: true},
		Server:    ServerConfig{ListenAddr: ":8080"},
		Batch:     BatchConfig{MaxConcurrency: engine.DefaultMaxConcurrency},
	}
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// LoadConfig layers defaults, the optional YAML file at path and PHISHGUARD_*
// environment overrides, then validates the result.
func LoadConfig(path string) (*Config, error) {
	return LoadConfigWithEnv(path, os.LookupEnv)
}

// LoadConfigWithEnv is LoadConfig with an explicit environment.
func LoadConfigWithEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if lookup != nil {
		if err := cfg.applyEnv(lookup); err != nil {
			return nil, err
		}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = splitList(v)
		}
	}

	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}

	str("MODEL_DIR", &c.ModelDir)
	str("MODEL_FILE", &c.ModelFile)
	str("SCALER_FILE", &c.ScalerFile)
	str("FEATURES_FILE", &c.FeaturesFile)
	boolean("CACHE_ARTIFACTS", &c.CacheArtifacts)
	str("LOG_LEVEL", &c.LogLevel)
	str("DOMAIN_PARSER", &c.DomainParser)
	list("BRAND_WATCHLIST", &c.BrandWatchlist)
	list("TRUSTED_DOMAINS", &c.TrustedDomains)

	boolean("FETCH_ENABLED", &c.Fetch.Enabled)
	if v, ok := lookup(EnvPrefix + "FETCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sFETCH_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Fetch.Timeout = d
		}
	}
	str("FETCH_USER_AGENT", &c.Fetch.UserAgent)
	str("FETCH_BACKEND", &c.Fetch.Backend)
	boolean("FETCH_SHOW_BROWSER", &c.Fetch.ShowBrowser)

	integer("HEURISTICS_REJECT_THRESHOLD", &c.Heuristics.RejectThreshold)
	float("THRESHOLDS_TRUSTED", &c.Thresholds.Trusted)
	float("THRESHOLDS_DEFAULT", &c.Thresholds.Default)
	boolean("THRESHOLDS_DECISION_NEGATIVE_IS_PHISHING", &c.Thresholds.DecisionNegativeIsPhishing)
	boolean("TYPOSQUAT_ENABLED", &c.Typosquat.Enabled)
	str("SERVER_LISTEN_ADDR", &c.Server.ListenAddr)
	str("HISTORY_PATH", &c.History.Path)
	integer("BATCH_MAX_CONCURRENCY", &c.Batch.MaxConcurrency)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Normalize fills zero values that have a safe default.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = def.Fetch.Timeout
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = def.Fetch.MaxBodyBytes
	}
	if strings.TrimSpace(c.Fetch.Backend) == "" {
		c.Fetch.Backend = def.Fetch.Backend
	}
	c.Fetch.Backend = strings.ToLower(strings.TrimSpace(c.Fetch.Backend))
	if c.Heuristics.RejectThreshold <= 0 {
		c.Heuristics.RejectThreshold = assessor.DefaultRejectThreshold
	}
	if c.Batch.MaxConcurrency <= 0 {
		c.Batch.MaxConcurrency = engine.DefaultMaxConcurrency
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ModelDir) == "" {
		errs = append(errs, errors.New("model_dir must be set"))
	}
	for name, v := range map[string]float64{
		"thresholds.trusted": c.Thresholds.Trusted,
		"thresholds.default": c.Thresholds.Default,
	} {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in (0, 1], got %v", name, v))
		}
	}
	switch webclient.Client(c.Fetch.Backend) {
	case webclient.ClientNetHTTP, webclient.ClientChromedp:
	default:
		errs = append(errs, fmt.Errorf("fetch.backend %q is not one of %v", c.Fetch.Backend, webclient.ListBackends()))
	}
	switch strings.ToLower(c.DomainParser) {
	case "", domainutil.ParserPublicSuffix, domainutil.ParserFallback:
	default:
		errs = append(errs, fmt.Errorf("domain_parser %q is not one of %s, %s", c.DomainParser, domainutil.ParserPublicSuffix, domainutil.ParserFallback))
	}
	return errors.Join(errs...)
}

// ArtifactPaths locates the model, scaler and feature list.
func (c *Config) ArtifactPaths() classifier.Paths {
	return classifier.Paths{
		Dir:      c.ModelDir,
		Model:    c.ModelFile,
		Scaler:   c.ScalerFile,
		Features: c.FeaturesFile,
	}
}

// WebClientConfig maps the fetch section onto the webclient settings.
func (c *Config) WebClientConfig() webclient.Config {
	return webclient.Config{
		Client:       webclient.Client(c.Fetch.Backend),
		Timeout:      c.Fetch.Timeout,
		UserAgent:    c.Fetch.UserAgent,
		MaxBodyBytes: c.Fetch.MaxBodyBytes,
		ShowBrowser:  c.Fetch.ShowBrowser,
	}
}

// EngineConfig maps the thresholds and batch sections onto the engine settings.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		TrustedThreshold:           c.Thresholds.Trusted,
		DefaultThreshold:           c.Thresholds.Default,
		DecisionNegativeIsPhishing: c.Thresholds.DecisionNegativeIsPhishing,
		MaxConcurrency:             c.Batch.MaxConcurrency,
	}
}
