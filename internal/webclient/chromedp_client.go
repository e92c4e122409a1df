package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/raysh454/phishguard/internal/logging"
)

// ChromedpClient renders pages in headless Chrome. It only supports GET.
type ChromedpClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	cfg         Config
	logger      logging.Logger
}

func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = logging.Nop{}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.ShowBrowser {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})
	componentLogger.Debug("created chromedp webclient",
		logging.Field{Key: "idle_after", Value: cfg.IdleAfter.String()},
		logging.Field{Key: "timeout", Value: cfg.Timeout.String()})

	return &ChromedpClient{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		cfg:         cfg,
		logger:      componentLogger,
	}, nil
}

// pageEvents tracks in-flight requests and the main document's responses.
type pageEvents struct {
	active    int32
	idle      chan struct{}
	idleAfter time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	once      sync.Once
	status    int
	mime      string
	headers   http.Header
	redirects int
}

func (p *pageEvents) startTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.idleAfter, func() {
		if atomic.LoadInt32(&p.active) == 0 {
			p.once.Do(func() { close(p.idle) })
		}
	})
}

func listenPage(ctx context.Context, idleAfter time.Duration) *pageEvents {
	p := &pageEvents{idle: make(chan struct{}), idleAfter: idleAfter}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&p.active, 1)
			if e.Type == network.ResourceTypeDocument && e.RedirectResponse != nil {
				p.mu.Lock()
				p.redirects++
				p.mu.Unlock()
			}
		case *network.EventResponseReceived:
			if e.Type == network.ResourceTypeDocument && e.Response != nil {
				h := http.Header{}
				for k, v := range e.Response.Headers {
					h.Set(k, fmt.Sprint(v))
				}
				p.mu.Lock()
				p.status = int(e.Response.Status)
				p.mime = e.Response.MimeType
				p.headers = h
				p.mu.Unlock()
			}
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&p.active, -1) <= 0 {
				p.startTimer()
			}
		}
	})
	return p
}

// Do navigates to req.URL, waits for the network to go quiet and returns the
// rendered outer HTML. The wait is bounded by cfg.Timeout and ctx.
func (cdc *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("chromedp backend supports GET only, got %s", m)
	}

	tabCtx, cancelTab := chromedp.NewContext(cdc.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, cdc.cfg.Timeout)
	defer cancelTimeout()

	// Abandon the render when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	events := listenPage(tabCtx, cdc.cfg.IdleAfter)

	cdc.logger.Debug("navigating", logging.Field{Key: "url", Value: req.URL})
	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		cdc.logger.Warn("navigation failed",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("navigate: %w", err)
	}

	// Snapshot once the network is quiet, or when three quarters of the budget is spent.
	soft := time.NewTimer(cdc.cfg.Timeout * 3 / 4)
	defer soft.Stop()
	select {
	case <-events.idle:
	case <-soft.C:
		cdc.logger.Debug("network never went idle, snapshotting early", logging.Field{Key: "url", Value: req.URL})
	case <-tabCtx.Done():
		return nil, fmt.Errorf("render: %w", tabCtx.Err())
	}

	var html, location string
	if err := chromedp.Run(tabCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("snapshot dom: %w", err)
	}

	events.mu.Lock()
	defer events.mu.Unlock()
	status := events.status
	if status == 0 {
		status = http.StatusOK
	}
	contentType := events.mime
	if contentType == "" {
		contentType = "text/html"
	}

	return &Response{
		Request:     req,
		FinalURL:    location,
		Redirects:   events.redirects,
		Headers:     events.headers,
		ContentType: contentType,
		Body:        []byte(html),
		StatusCode:  status,
		FetchedAt:   time.Now(),
	}, nil
}

func (cdc *ChromedpClient) Close() error {
	cdc.logger.Debug("closing chromedp webclient")
	cdc.allocCancel()
	return nil
}
