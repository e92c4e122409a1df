package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/classifier"
	"github.com/raysh454/phishguard/internal/domainutil"
	"github.com/raysh454/phishguard/internal/engine"
	"github.com/raysh454/phishguard/internal/fetcher"
	"github.com/raysh454/phishguard/internal/history"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"
	"github.com/raysh454/phishguard/internal/typosquat"
	"github.com/raysh454/phishguard/internal/webclient"
)

// Application is the global runtime state container.
// It holds config and the core services shared by the CLI and the server.
// Pass Application into modules that need access to the global state rather
// than using package-level variables.
type Application struct {
	Config *Config
	Logger logging.Logger

	Engine  *engine.Engine
	Orch    *Orchestrator
	Trusted engine.TrustedDomains
	// History is nil when history.path is empty.
	History *history.SQLiteStore

	webClient webclient.WebClient

	// internal context for cancellation / lifecycle
	ctx    context.Context
	cancel context.CancelFunc
}

type options struct {
	webClient webclient.WebClient
	artifacts engine.ArtifactSource
}

// Option overrides a collaborator NewApplication would otherwise build from config.
type Option func(*options)

// WithWebClient makes the fetcher use wc instead of the configured backend.
func WithWebClient(wc webclient.WebClient) Option {
	return func(o *options) { o.webClient = wc }
}

// WithArtifactSource replaces the on-disk artifact loader.
func WithArtifactSource(src engine.ArtifactSource) Option {
	return func(o *options) { o.artifacts = src }
}

// NewApplication wires every component from cfg. Missing model artifacts are
// not an error here; they surface on the first classification.
func NewApplication(cfg *Config, logger logging.Logger, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	parser := domainutil.New(cfg.DomainParser)
	if parser.Name() == domainutil.ParserFallback {
		logger.Info("public suffix list disabled, using fallback domain parser")
	}

	var distance typosquat.Distance
	if cfg.Typosquat.Enabled {
		distance = typosquat.LevenshteinDistance
	}
	brands := typosquat.NewWatchlist(cfg.BrandWatchlist)
	detector := typosquat.NewDetector(distance, brands, parser, logger)
	heuristics := assessor.NewHeuristicsAssessor(cfg.Heuristics, assessor.DefaultRules(detector), logger)

	artifacts := o.artifacts
	if artifacts == nil {
		artifacts = classifier.NewLoader(cfg.ArtifactPaths(), cfg.CacheArtifacts, logger)
	}

	wc := o.webClient
	if wc == nil && cfg.Fetch.Enabled {
		var err error
		wc, err = webclient.NewWebClient(cfg.WebClientConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("creating webclient: %w", err)
		}
	}
	if !cfg.Fetch.Enabled {
		logger.Info("page fetching disabled, content features stay neutral")
	}

	f, err := fetcher.New(fetcher.Config{Enabled: cfg.Fetch.Enabled, Timeout: cfg.Fetch.Timeout}, wc, logger)
	if err != nil {
		closeQuietly(wc)
		return nil, fmt.Errorf("creating fetcher: %w", err)
	}

	var store *history.SQLiteStore
	var recorder engine.Recorder
	if cfg.History.Path != "" {
		store, err = history.Open(cfg.History.Path, logger)
		if err != nil {
			closeQuietly(wc)
			return nil, fmt.Errorf("opening history: %w", err)
		}
		recorder = store
	}

	trusted := engine.NewTrustedDomains(cfg.TrustedDomains)
	eng, err := engine.New(cfg.EngineConfig(), engine.Dependencies{
		Artifacts: artifacts,
		Fetcher:   f,
		Assessor:  heuristics,
		Parser:    parser,
		Trusted:   trusted,
		Brands:    brands,
		Recorder:  recorder,
		Logger:    logger,
	})
	if err != nil {
		closeQuietly(wc)
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		Config:    cfg,
		Logger:    logger,
		Engine:    eng,
		Orch:      NewOrchestrator(eng, logger),
		Trusted:   trusted,
		History:   store,
		webClient: wc,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func closeQuietly(wc webclient.WebClient) {
	if wc != nil {
		_ = wc.Close()
	}
}

// Start logs the effective settings. It starts no background work; jobs are
// started on demand through Orch.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application starting",
		logging.Field{Key: "model_dir", Value: a.Config.ModelDir},
		logging.Field{Key: "fetch_backend", Value: a.Config.Fetch.Backend},
		logging.Field{Key: "fetch_enabled", Value: a.Config.Fetch.Enabled},
		logging.Field{Key: "history", Value: a.History != nil},
		logging.Field{Key: "trusted_domains", Value: a.Trusted.Len()})
	return nil
}

// Context is canceled by Shutdown.
func (a *Application) Context() context.Context { return a.ctx }

// Classify runs one URL through the engine.
func (a *Application) Classify(ctx context.Context, rawURL string) (*model.Verdict, error) {
	return a.Engine.Classify(ctx, rawURL)
}

// Shutdown cancels running jobs and releases the webclient and the history store.
func (a *Application) Shutdown(_ context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	if a.Orch != nil {
		a.Orch.Close()
	}

	var errs []error
	if a.webClient != nil {
		if err := a.webClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing webclient: %w", err))
		}
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing history: %w", err))
		}
	}

	// cancel internal ctx to signal local components/tests
	a.cancel()
	return errors.Join(errs...)
}
