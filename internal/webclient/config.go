package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

const (
	DefaultTimeout      = 6 * time.Second
	DefaultMaxBodyBytes = 5 << 20
	DefaultIdleAfter    = 500 * time.Millisecond
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
)

// Config carries the settings every backend understands. It is filled from
// app.Config so this package does not import app.
type Config struct {
	Client       Client
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	// IdleAfter is how long the chromedp backend waits with no network activity
	// before it snapshots the DOM.
	IdleAfter time.Duration
	// ShowBrowser runs chromedp with a visible window.
	ShowBrowser bool
}

// WithDefaults fills zero values.
func (c Config) WithDefaults() Config {
	if c.Client == "" {
		c.Client = ClientNetHTTP
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.IdleAfter <= 0 {
		c.IdleAfter = DefaultIdleAfter
	}
	return c
}
