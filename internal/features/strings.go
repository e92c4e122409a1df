package features

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/raysh454/phishguard/internal/utils"
)

var (
	hexRunRe = regexp.MustCompile(`(?i)[0-9a-f]{20,}`)
	ipv4Re   = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
)

// SensitiveWords are counted once each when they occur anywhere in the URL.
var SensitiveWords = []string{"secure", "account", "webscr", "login", "ebayisapi", "banking", "confirm"}

// ExtractStringFeatures derives the lexical features of one URL. Lengths count
// characters, not bytes. DomainInSubdomains and DomainInPaths are always 0.
func ExtractStringFeatures(p utils.URLParts) *FeatureSet {
	raw := p.Raw
	host := p.Hostname
	lower := strings.ToLower(raw)

	fs := NewFeatureSet()
	fs.Set(NumDots, count(raw, "."))
	fs.Set(SubdomainLevel, count(host, "."))
	fs.Set(PathLevel, count(p.Path, "/"))
	fs.Set(UrlLength, runes(raw))
	fs.Set(NumDash, count(raw, "-"))
	fs.Set(NumDashInHostname, count(host, "-"))
	fs.Set(AtSymbol, count(raw, "@"))
	fs.Set(TildeSymbol, count(raw, "~"))
	fs.Set(NumUnderscore, count(raw, "_"))
	fs.Set(NumPercent, count(raw, "%"))
	fs.Set(NumQueryComponents, queryComponents(p.Query))
	fs.Set(NumAmpersand, count(raw, "&"))
	fs.Set(NumHash, count(raw, "#"))
	fs.Set(NumNumericChars, digits(raw))
	fs.SetBool(NoHttps, !strings.EqualFold(p.Scheme, "https"))
	fs.SetBool(RandomString, hexRunRe.MatchString(raw))
	fs.SetBool(IpAddress, ipv4Re.MatchString(host))
	fs.Set(DomainInSubdomains, 0)
	fs.Set(DomainInPaths, 0)
	fs.Set(HostnameLength, runes(host))
	fs.Set(PathLength, runes(p.Path))
	fs.Set(QueryLength, runes(p.Query))
	fs.Set(DoubleSlashInPath, count(p.Path, "//"))

	hits := 0
	for _, w := range SensitiveWords {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	fs.Set(NumSensitiveWords, float64(hits))
	return fs
}

func count(s, sub string) float64 {
	return float64(strings.Count(s, sub))
}

func runes(s string) float64 {
	return float64(utf8.RuneCountInString(s))
}

func digits(s string) float64 {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return float64(n)
}

func queryComponents(q string) float64 {
	if q == "" {
		return 0
	}
	return float64(strings.Count(q, "&") + 1)
}
