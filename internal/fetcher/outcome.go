package fetcher

import (
	"github.com/PuerkitoBio/goquery"
)

type Status int

const (
	StatusDegraded Status = iota
	StatusFetched
)

func (s Status) String() string {
	if s == StatusFetched {
		return "fetched"
	}
	return "degraded"
}

// Outcome is the result of a fetch-and-parse attempt. A degraded outcome carries
// only the reason; callers fall back to the requested URL and neutral content.
type Outcome struct {
	Status       Status
	RequestedURL string

	// Set when Status is StatusFetched.
	FinalURL   string
	Redirects  int
	StatusCode int
	Doc        *goquery.Document
	Markup     string

	// Set when Status is StatusDegraded.
	Reason string
	Err    error
}

func (o Outcome) Fetched() bool { return o.Status == StatusFetched && o.Doc != nil }

// Redirected reports whether a fetched page landed somewhere other than requested.
func (o Outcome) Redirected() bool {
	return o.Fetched() && o.Redirects > 0 && o.FinalURL != ""
}

func Degraded(requestedURL, reason string, err error) Outcome {
	return Outcome{Status: StatusDegraded, RequestedURL: requestedURL, Reason: reason, Err: err}
}
