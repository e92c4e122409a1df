package typosquat

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/raysh454/phishguard/internal/domainutil"
	"github.com/raysh454/phishguard/internal/logging"
)

// Weight is the heuristic score a typosquatting match contributes.
const Weight = 2

// MaxDistance is the largest edit distance still treated as a lookalike.
const MaxDistance = 2

// Distance computes an edit distance between two strings.
// A nil Distance disables the typosquatting check.
type Distance func(a, b string) int

// LevenshteinDistance is the default Distance.
func LevenshteinDistance(a, b string) int {
	return fuzzy.LevenshteinDistance(a, b)
}

// DefaultBrands is the built-in watchlist of frequently impersonated brands.
var DefaultBrands = []string{
	"google", "paypal", "ebay", "amazon", "apple", "microsoft", "facebook",
	"instagram", "twitter", "linkedin", "netflix", "spotify", "gmail", "yahoo",
	"bankofamerica", "chase", "wellsfargo", "citibank", "kaggle", "yesbank",
}

// Watchlist is an ordered, read-only list of brand labels.
type Watchlist struct {
	brands []string
}

// NewWatchlist copies brands, lowercasing and dropping blanks. Order is preserved.
func NewWatchlist(brands []string) Watchlist {
	out := make([]string, 0, len(brands))
	for _, b := range brands {
		b = strings.ToLower(strings.TrimSpace(b))
		if b != "" {
			out = append(out, b)
		}
	}
	return Watchlist{brands: out}
}

func (w Watchlist) Len() int { return len(w.brands) }

// Brands returns a copy of the list.
func (w Watchlist) Brands() []string {
	return append([]string(nil), w.brands...)
}

// Match describes a hostname whose label is a near miss of a watched brand.
type Match struct {
	Label    string
	Brand    string
	Distance int
}

func (m Match) Explanation() string {
	return fmt.Sprintf("Potential typosquatting detected. Domain '%s' is very close to '%s'.", m.Label, m.Brand)
}

type Detector struct {
	distance  Distance
	watchlist Watchlist
	parser    domainutil.Parser
}

// NewDetector builds a detector. When distance is nil the detector never matches
// and a note is logged once here.
func NewDetector(distance Distance, watchlist Watchlist, parser domainutil.Parser, logger logging.Logger) *Detector {
	if parser == nil {
		parser = domainutil.PublicSuffixParser{}
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	if distance == nil {
		logger.Info("edit distance unavailable, typosquatting check disabled")
	}
	return &Detector{distance: distance, watchlist: watchlist, parser: parser}
}

func (d *Detector) Enabled() bool {
	return d != nil && d.distance != nil
}

// Check compares the hostname's domain label to each brand in watchlist order and
// returns the first brand at distance 1 or 2. Exact matches never trigger.
func (d *Detector) Check(hostname string) (Match, bool) {
	if !d.Enabled() {
		return Match{}, false
	}
	label := d.parser.DomainLabel(hostname)
	for _, brand := range d.watchlist.brands {
		dist := d.distance(label, brand)
		if dist > 0 && dist <= MaxDistance {
			return Match{Label: label, Brand: brand, Distance: dist}, true
		}
	}
	return Match{}, false
}
