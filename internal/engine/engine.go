// Package engine runs the two-stage classification: feature extraction, the
// heuristic pre-filter, and, when the pre-filter passes, scaling plus model
// inference against a domain-aware threshold.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/phishguard/internal/assessor"
	"github.com/raysh454/phishguard/internal/classifier"
	"github.com/raysh454/phishguard/internal/domainutil"
	"github.com/raysh454/phishguard/internal/features"
	"github.com/raysh454/phishguard/internal/fetcher"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"
	"github.com/raysh454/phishguard/internal/typosquat"
	"github.com/raysh454/phishguard/internal/utils"
)

// Explanation notes appended by the engine itself.
const (
	NoteHeuristicReject = "URL flagged by high-risk heuristic pre-filter."
	NoteHeuristicPass   = "Heuristic check passed. Using full ML model."
)

// ArtifactSource yields the model, scaler and feature order.
type ArtifactSource interface {
	Load(ctx context.Context) (*classifier.Artifacts, error)
}

// PageFetcher fetches and parses one page. It never fails; problems come back
// as a degraded outcome.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) fetcher.Outcome
}

// Recorder persists verdicts. Recording errors never fail a classification.
type Recorder interface {
	Record(ctx context.Context, v *model.Verdict) error
}

// Dependencies are the collaborators an Engine is built from. Artifacts,
// Fetcher and Assessor are required.
type Dependencies struct {
	Artifacts ArtifactSource
	Fetcher   PageFetcher
	Assessor  *assessor.HeuristicsAssessor
	Parser    domainutil.Parser
	Trusted   TrustedDomains
	Brands    typosquat.Watchlist
	Recorder  Recorder
	Logger    logging.Logger
}

type Engine struct {
	cfg       Config
	artifacts ArtifactSource
	fetcher   PageFetcher
	assessor  *assessor.HeuristicsAssessor
	parser    domainutil.Parser
	trusted   TrustedDomains
	brands    typosquat.Watchlist
	recorder  Recorder
	logger    logging.Logger
	now       func() time.Time
}

func New(cfg Config, deps Dependencies) (*Engine, error) {
	if deps.Artifacts == nil {
		return nil, errors.New("engine: artifact source is nil")
	}
	if deps.Fetcher == nil {
		return nil, errors.New("engine: fetcher is nil")
	}
	if deps.Assessor == nil {
		return nil, errors.New("engine: assessor is nil")
	}
	if deps.Parser == nil {
		deps.Parser = domainutil.PublicSuffixParser{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop{}
	}
	return &Engine{
		cfg:       cfg.withDefaults(),
		artifacts: deps.Artifacts,
		fetcher:   deps.Fetcher,
		assessor:  deps.Assessor,
		parser:    deps.Parser,
		trusted:   deps.Trusted,
		brands:    deps.Brands,
		recorder:  deps.Recorder,
		logger:    deps.Logger.With(logging.Field{Key: "component", Value: "engine"}),
		now:       time.Now,
	}, nil
}

// Classify runs the full pipeline for one URL. The only error it returns wraps
// classifier.ErrArtifactsUnavailable; every other problem degrades into the verdict.
func (e *Engine) Classify(ctx context.Context, raw string) (*model.Verdict, error) {
	start := e.now()
	pageURL := utils.EnsureScheme(raw)

	arts, err := e.artifacts.Load(ctx)
	if err != nil {
		e.logger.Error("model artifacts unavailable",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, artifactError(err)
	}

	outcome := e.fetcher.Fetch(ctx, pageURL)
	ex := features.Extract(pageURL, outcome, e.brands, e.logger)

	h := e.assessor.Assess(assessor.Input{Features: ex.StringFeatures, Hostname: ex.Hostname()})

	v := &model.Verdict{
		URL:            pageURL,
		FinalURL:       ex.FinalURL,
		Redirected:     ex.Redirected,
		Fetched:        ex.Fetched,
		HeuristicScore: h.Score,
		Info:           append([]string{}, h.Explanations...),
		ClassifiedAt:   start.UTC(),
	}
	if ex.Redirected {
		v.Info = append(v.Info, fmt.Sprintf("Redirect detected; final URL: %s", ex.FinalURL))
	}

	if e.assessor.Rejects(h.Score) {
		v.Label = model.Phishing
		v.Stage = model.StageHeuristic
		v.Info = append(v.Info, NoteHeuristicReject)
		return e.finish(ctx, v, start), nil
	}

	v.Info = append(v.Info, NoteHeuristicPass)
	v.Stage = model.StageModel

	score, err := e.infer(arts, ex.Features)
	if err != nil {
		e.logger.Error("model inference failed",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, artifactError(err)
	}

	v.RegisteredDomain = e.parser.RegisteredDomain(ex.Hostname())
	v.Trusted = e.trusted.Contains(v.RegisteredDomain) && ex.URL.Scheme == "https"
	v.Threshold = e.cfg.DefaultThreshold
	if v.Trusted {
		v.Threshold = e.cfg.TrustedThreshold
	}
	v.ScoreKind = string(score.Kind)
	v.Score = score.Value
	if e.isPhishing(score, v.Threshold) {
		v.Label = model.Phishing
	}
	v.Info = append(v.Info, fmt.Sprintf("Model score %.4f vs threshold %.2f for domain '%s' (trusted: %v).",
		score.Value, v.Threshold, v.RegisteredDomain, v.Trusted))

	return e.finish(ctx, v, start), nil
}

// infer reorders the features to the artifact column order, filling gaps with
// 0, scales them and scores the result.
func (e *Engine) infer(arts *classifier.Artifacts, fs *features.FeatureSet) (classifier.Score, error) {
	if missing := fs.Missing(arts.Features); len(missing) > 0 {
		e.logger.Debug("model expects columns the extractor does not produce",
			logging.Field{Key: "missing", Value: missing})
	}
	x := fs.Vector(arts.Features)

	if arts.Scaler != nil {
		scaled, err := arts.Scaler.Transform(x)
		if err != nil {
			return classifier.Score{}, fmt.Errorf("scale features: %w", err)
		}
		x = scaled
	}
	score, err := classifier.Evaluate(arts.Model, x)
	if err != nil {
		return classifier.Score{}, fmt.Errorf("evaluate model: %w", err)
	}
	return score, nil
}

func (e *Engine) isPhishing(s classifier.Score, threshold float64) bool {
	if s.Kind == classifier.KindDecision {
		if e.cfg.DecisionNegativeIsPhishing {
			return s.Value < 0
		}
		return s.Value > 0
	}
	return s.Value >= threshold
}

func (e *Engine) finish(ctx context.Context, v *model.Verdict, start time.Time) *model.Verdict {
	v.Duration = e.now().Sub(start)
	e.logger.Info("url classified",
		logging.Field{Key: "url", Value: v.URL},
		logging.Field{Key: "label", Value: v.Label.Name()},
		logging.Field{Key: "stage", Value: string(v.Stage)},
		logging.Field{Key: "heuristic_score", Value: v.HeuristicScore},
		logging.Field{Key: "fetched", Value: v.Fetched},
		logging.Field{Key: "duration_ms", Value: v.Duration.Milliseconds()})

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, v); err != nil {
			e.logger.Warn("failed to record verdict",
				logging.Field{Key: "url", Value: v.URL},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}
	return v
}

func artifactError(err error) error {
	if errors.Is(err, classifier.ErrArtifactsUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", classifier.ErrArtifactsUnavailable, err)
}
