package webclient

import "context"

// WebClient performs a single HTTP exchange. Implementations follow redirects and
// report the location they finally landed on in Response.FinalURL.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}
