package fetcher

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/webclient"
)

// Module: fetcher
// Fetches one page and parses it into a document tree. Every failure is folded
// into a degraded Outcome; Fetch never returns an error.
type Fetcher struct {
	cfg    Config
	wc     webclient.WebClient
	logger logging.Logger
}

// New creates a new Fetcher with the given webclient and logger.
func New(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if cfg.Enabled && wc == nil {
		return nil, fmt.Errorf("fetcher: webclient is nil")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = webclient.DefaultTimeout
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// Fetch performs a single GET bounded by the configured timeout.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) Outcome {
	if !f.cfg.Enabled {
		return Degraded(pageURL, "fetch disabled", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	resp, err := f.wc.Do(ctx, &webclient.Request{Method: "GET", URL: pageURL})
	if err != nil {
		f.logger.Warn("fetch failed, continuing without page content",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err.Error()})
		return Degraded(pageURL, "fetch failed", err)
	}

	if !isMarkup(resp.ContentType) {
		f.logger.Warn("response is not markup, continuing without page content",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "content_type", Value: resp.ContentType})
		return Degraded(pageURL, "non-html content", fmt.Errorf("content type %q", resp.ContentType))
	}

	markup := string(resp.Body)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		f.logger.Warn("failed to parse page",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err.Error()})
		return Degraded(pageURL, "parse failed", err)
	}

	finalURL := resp.FinalURL
	if finalURL == "" {
		finalURL = pageURL
	}
	f.logger.Debug("fetched page",
		logging.Field{Key: "url", Value: pageURL},
		logging.Field{Key: "final_url", Value: finalURL},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "bytes", Value: len(resp.Body)})

	return Outcome{
		Status:       StatusFetched,
		RequestedURL: pageURL,
		FinalURL:     finalURL,
		Redirects:    resp.Redirects,
		StatusCode:   resp.StatusCode,
		Doc:          doc,
		Markup:       markup,
	}
}

// isMarkup accepts HTML and XHTML. An absent or unparseable content type is
// treated as markup.
func isMarkup(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	switch mt {
	case "text/html", "application/xhtml+xml", "text/plain", "application/xml", "text/xml":
		return true
	}
	return false
}
