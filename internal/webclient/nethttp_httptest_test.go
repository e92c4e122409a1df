package webclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/webclient"
)

func newNetHTTP(t *testing.T, cfg webclient.Config, hc *http.Client) *webclient.NetHTTPClient {
	t.Helper()
	client, err := webclient.NewNetHTTPClient(cfg, logging.Nop{}, hc)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// ─── Do: real HTTP round-trip via httptest ──────────────────────────────

func TestNetHTTPClient_Do_GET_ReturnsBody(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "hello")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, "<html>response body</html>")
	}))
	defer ts.Close()

	client := newNetHTTP(t, webclient.Config{}, ts.Client())
	resp, err := client.Do(context.Background(), &webclient.Request{Method: "GET", URL: ts.URL + "/test"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "<html>response body</html>" {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if resp.Headers.Get("X-Custom") != "hello" {
		t.Errorf("expected X-Custom header 'hello', got %q", resp.Headers.Get("X-Custom"))
	}
	if resp.FinalURL != ts.URL+"/test" {
		t.Errorf("FinalURL = %q", resp.FinalURL)
	}
	if resp.Redirected() {
		t.Error("no redirect expected")
	}
	if !strings.HasPrefix(resp.ContentType, "text/html") {
		t.Errorf("ContentType = %q", resp.ContentType)
	}
}

func TestNetHTTPClient_Do_SendsBrowserUserAgent(t *testing.T) {
	t.Parallel()
	got := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	client := newNetHTTP(t, webclient.Config{}, ts.Client())
	if _, err := client.Get(context.Background(), ts.URL); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ua := <-got; !strings.HasPrefix(ua, "Mozilla/5.0") {
		t.Errorf("expected browser-like user agent, got %q", ua)
	}
}

func TestNetHTTPClient_Do_RequestHeaderOverridesUserAgent(t *testing.T) {
	t.Parallel()
	got := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	client := newNetHTTP(t, webclient.Config{}, ts.Client())
	_, err := client.Do(context.Background(), &webclient.Request{
		URL:     ts.URL,
		Headers: http.Header{"User-Agent": {"custom/1.0"}},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if ua := <-got; ua != "custom/1.0" {
		t.Errorf("got %q", ua)
	}
}

func TestNetHTTPClient_Do_FollowsRedirects(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/middle", http.StatusFound)
	})
	mux.HandleFunc("/middle", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landing", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<title>landed</title>")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newNetHTTP(t, webclient.Config{}, ts.Client())
	resp, err := client.Get(context.Background(), ts.URL+"/start")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.FinalURL != ts.URL+"/landing" {
		t.Errorf("FinalURL = %q, want %q", resp.FinalURL, ts.URL+"/landing")
	}
	if resp.Redirects != 2 || !resp.Redirected() {
		t.Errorf("Redirects = %d", resp.Redirects)
	}
}

func TestNetHTTPClient_Do_DecodesDeclaredCharset(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "café" in latin-1
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	}))
	defer ts.Close()

	client := newNetHTTP(t, webclient.Config{}, ts.Client())
	resp, err := client.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(resp.Body) != "café" {
		t.Errorf("expected utf-8 decoded body, got %q", resp.Body)
	}
}

func TestNetHTTPClient_Do_TruncatesLargeBody(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, strings.Repeat("X", 4096))
	}))
	defer ts.Close()

	client := newNetHTTP(t, webclient.Config{MaxBodyBytes: 1024}, ts.Client())
	resp, err := client.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(resp.Body) != 1024 || !resp.Truncated {
		t.Errorf("expected 1024 truncated bytes, got %d (truncated=%v)", len(resp.Body), resp.Truncated)
	}
}

func TestNetHTTPClient_Do_StatusCodesAreNotErrors(t *testing.T) {
	t.Parallel()
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))
		client := newNetHTTP(t, webclient.Config{}, ts.Client())
		resp, err := client.Get(context.Background(), ts.URL)
		ts.Close()
		if err != nil {
			t.Fatalf("Do(%d): %v", code, err)
		}
		if resp.StatusCode != code {
			t.Errorf("expected %d, got %d", code, resp.StatusCode)
		}
	}
}

func TestNetHTTPClient_Do_NilRequest_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newNetHTTP(t, webclient.Config{}, nil)
	if _, err := client.Do(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestNetHTTPClient_Do_ConnectionRefused_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newNetHTTP(t, webclient.Config{Timeout: time.Second}, nil)
	if _, err := client.Get(context.Background(), "http://127.0.0.1:1"); err == nil {
		t.Fatal("expected error for connection refused")
	}
}

func TestNetHTTPClient_Do_Timeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	client := newNetHTTP(t, webclient.Config{Timeout: 100 * time.Millisecond}, nil)
	start := time.Now()
	_, err := client.Get(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestNetHTTPClient_Do_ContextCanceled_ReturnsError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer ts.Close()

	client := newNetHTTP(t, webclient.Config{}, ts.Client())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, ts.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
