package webclient

import (
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	// Options contains backend-specific options like "render": "true" for chromedp
	Options map[string]string
}

type Response struct {
	Request *Request

	// FinalURL is the URL after redirects; equals Request.URL when none happened.
	FinalURL  string
	Redirects int

	Headers     http.Header
	ContentType string
	Body        []byte
	StatusCode  int

	// Truncated is set when the body hit the configured size limit.
	Truncated bool
	FetchedAt time.Time
}

// Redirected reports whether at least one redirect was followed.
func (r *Response) Redirected() bool {
	return r != nil && r.Redirects > 0
}
