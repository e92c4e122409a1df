// Package domainutil derives registrable domains and domain labels from hostnames.
//
// Two Parser implementations exist: PublicSuffixParser consults the public suffix
// list shipped with golang.org/x/net, FallbackParser applies a fixed table of
// multi-label suffixes. Callers choose one at startup and treat both alike.
package domainutil

import (
	"net"
	"strings"

	"github.com/raysh454/phishguard/internal/utils"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

type Parser interface {
	// DomainLabel returns the registrable domain's primary label ("google" for "mail.google.co.uk").
	DomainLabel(hostname string) string
	// RegisteredDomain returns label plus public suffix ("google.co.uk").
	RegisteredDomain(hostname string) string
	Name() string
}

const (
	ParserPublicSuffix = "publicsuffix"
	ParserFallback     = "fallback"
)

// New returns the parser registered under name. Unknown names get the public suffix parser.
func New(name string) Parser {
	if strings.EqualFold(strings.TrimSpace(name), ParserFallback) {
		return FallbackParser{}
	}
	return PublicSuffixParser{}
}

// IsExternal reports whether href names an absolute location whose hostname differs
// from baseHostname. Relative, fragment-only and empty references are never external.
func IsExternal(href, baseHostname string) bool {
	h := utils.SplitURL(strings.TrimSpace(href)).Hostname
	if h == "" {
		return false
	}
	return !strings.EqualFold(h, baseHostname)
}

// PublicSuffixParser resolves eTLD+1 through the public suffix list.
type PublicSuffixParser struct{}

func (PublicSuffixParser) Name() string { return ParserPublicSuffix }

func (p PublicSuffixParser) RegisteredDomain(hostname string) string {
	host, ok := sanitize(hostname)
	if !ok {
		return host
	}
	ascii := host
	if converted, err := idna.Lookup.ToASCII(host); err == nil && converted != "" {
		ascii = converted
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(ascii)
	if err != nil {
		// host is itself a public suffix or malformed
		return FallbackParser{}.RegisteredDomain(host)
	}
	return etld1
}

func (p PublicSuffixParser) DomainLabel(hostname string) string {
	if host, ok := sanitize(hostname); !ok {
		return host
	}
	label, _, _ := strings.Cut(p.RegisteredDomain(hostname), ".")
	return label
}

// FallbackParser splits on dots and recognizes a small table of multi-label suffixes.
type FallbackParser struct{}

var multiLabelSuffixes = map[string]struct{}{
	"co.uk": {}, "org.uk": {}, "ac.uk": {}, "gov.uk": {}, "me.uk": {}, "net.uk": {},
	"com.au": {}, "net.au": {}, "org.au": {}, "edu.au": {}, "gov.au": {},
	"co.nz": {}, "org.nz": {}, "co.za": {}, "co.jp": {}, "ne.jp": {}, "or.jp": {},
	"co.in": {}, "net.in": {}, "org.in": {}, "co.kr": {}, "or.kr": {},
	"com.br": {}, "net.br": {}, "com.cn": {}, "net.cn": {}, "org.cn": {},
	"com.mx": {}, "com.ar": {}, "com.tr": {}, "com.sg": {}, "com.hk": {}, "co.id": {},
}

func (FallbackParser) Name() string { return ParserFallback }

func (f FallbackParser) RegisteredDomain(hostname string) string {
	host, ok := sanitize(hostname)
	if !ok {
		return host
	}
	parts := strings.Split(host, ".")
	n := len(parts)
	if n >= 3 {
		if _, multi := multiLabelSuffixes[parts[n-2]+"."+parts[n-1]]; multi {
			return strings.Join(parts[n-3:], ".")
		}
	}
	return strings.Join(parts[n-2:], ".")
}

func (f FallbackParser) DomainLabel(hostname string) string {
	if host, ok := sanitize(hostname); !ok {
		return host
	}
	label, _, _ := strings.Cut(f.RegisteredDomain(hostname), ".")
	return label
}

// sanitize lowercases and trims a hostname. ok is false when the result needs no
// further decomposition: empty, dotless, or an IP literal.
func sanitize(hostname string) (string, bool) {
	host := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(hostname), "."))
	if host == "" || !strings.Contains(host, ".") {
		return host, false
	}
	if net.ParseIP(host) != nil {
		return host, false
	}
	return host, true
}
