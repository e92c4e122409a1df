package engine

import (
	"sort"
	"strings"
)

// DefaultTrustedDomains are registrable domains that get the higher threshold
// when served over https.
var DefaultTrustedDomains = []string{
	"google.com", "youtube.com", "gmail.com", "paypal.com", "ebay.com",
	"amazon.com", "apple.com", "microsoft.com", "live.com", "facebook.com",
	"instagram.com", "twitter.com", "x.com", "linkedin.com", "netflix.com",
	"spotify.com", "yahoo.com", "bankofamerica.com", "chase.com",
	"wellsfargo.com", "citibank.com", "kaggle.com", "github.com", "wikipedia.org",
}

// TrustedDomains is a read-only set of registrable domains.
type TrustedDomains struct {
	set map[string]struct{}
}

// NewTrustedDomains lowercases and trims each entry; blanks are dropped.
func NewTrustedDomains(domains []string) TrustedDomains {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return TrustedDomains{set: set}
}

func (t TrustedDomains) Contains(domain string) bool {
	if domain == "" {
		return false
	}
	_, ok := t.set[strings.ToLower(domain)]
	return ok
}

func (t TrustedDomains) Len() int { return len(t.set) }

// Domains returns the members in sorted order.
func (t TrustedDomains) Domains() []string {
	out := make([]string, 0, len(t.set))
	for d := range t.set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
