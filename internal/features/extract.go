package features

import (
	"github.com/raysh454/phishguard/internal/fetcher"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/typosquat"
	"github.com/raysh454/phishguard/internal/utils"
)

// Extraction is the combined output of one feature pass.
type Extraction struct {
	// Features holds string, content and alias columns.
	Features *FeatureSet
	// StringFeatures is the lexical subset the heuristic scorer reads.
	StringFeatures *FeatureSet
	// URL is the parse the string features were computed from: the final URL when
	// the page was fetched, the requested URL otherwise.
	URL utils.URLParts

	Fetched    bool
	Redirected bool
	FinalURL   string
	// FailedGroups names content feature groups that panicked.
	FailedGroups []string
}

// Hostname is the lowercased host the features describe.
func (e *Extraction) Hostname() string { return e.URL.Hostname }

// Extract merges string and content features for requestedURL given the
// outcome of fetching it. A degraded outcome yields string features of the
// requested URL and neutral content features.
func Extract(requestedURL string, outcome fetcher.Outcome, brands typosquat.Watchlist, logger logging.Logger) *Extraction {
	ex := &Extraction{URL: utils.SplitURL(requestedURL), FinalURL: requestedURL}

	content := DefaultContentFeatures()
	if outcome.Fetched() {
		final := outcome.FinalURL
		if final == "" {
			final = requestedURL
		}
		ex.URL = utils.SplitURL(final)
		ex.FinalURL = final
		ex.Fetched = true
		ex.Redirected = outcome.Redirected()

		content, ex.FailedGroups = ExtractContentFeatures(Page{
			Doc:    outcome.Doc,
			Markup: outcome.Markup,
			URL:    ex.URL,
		}, brands, logger)
	}

	ex.StringFeatures = ExtractStringFeatures(ex.URL)

	all := ex.StringFeatures.Clone()
	all.Merge(content)
	AddAliases(all)
	ex.Features = all
	return ex
}

// AddAliases appends the derived columns, copying each from its source or 0.
func AddAliases(fs *FeatureSet) {
	for _, a := range Aliases {
		fs.Set(a.Name, fs.Value(a.Source))
	}
}
