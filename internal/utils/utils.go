package utils

import (
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`(?i)^https?://`)

// URLParts holds the lexical components of a URL as the feature extractors see them.
// Hostname is lowercased and stripped of userinfo and port. Path excludes the query
// and fragment.
type URLParts struct {
	Raw      string
	Scheme   string
	Host     string
	Hostname string
	Path     string
	Query    string
	Fragment string
}

// EnsureScheme prepends "http://" when raw does not already start with an
// http or https scheme. An existing prefix is left as is.
func EnsureScheme(raw string) string {
	if schemePrefix.MatchString(raw) {
		return raw
	}
	return "http://" + raw
}

// SplitURL decomposes raw without validating it. It never fails: malformed
// escapes, spaces and odd ports are kept verbatim in the component they land in.
// Empty components stay empty.
func SplitURL(raw string) URLParts {
	p := URLParts{Raw: raw}
	rest := raw

	if i := strings.Index(rest, ":"); i > 0 && validScheme(rest[:i]) {
		p.Scheme = strings.ToLower(rest[:i])
		rest = rest[i+1:]
	}

	if before, frag, ok := strings.Cut(rest, "#"); ok {
		rest, p.Fragment = before, frag
	}
	if before, q, ok := strings.Cut(rest, "?"); ok {
		rest, p.Query = before, q
	}

	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		p.Host = rest[:end]
		rest = rest[end:]
	}
	p.Path = rest
	p.Hostname = hostnameOf(p.Host)
	return p
}

func hostnameOf(host string) string {
	if i := strings.LastIndexByte(host, '@'); i >= 0 {
		host = host[i+1:]
	}
	if strings.HasPrefix(host, "[") {
		if end := strings.IndexByte(host, ']'); end > 0 {
			return strings.ToLower(host[1:end])
		}
		return strings.ToLower(host[1:])
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.ToLower(host)
}

func validScheme(s string) bool {
	for i, c := range s {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
