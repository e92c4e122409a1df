package webclient_test

import (
	"testing"

	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/webclient"
)

// TestNewWebClient_DefaultBackend verifies that empty backend defaults to nethttp
func TestNewWebClient_DefaultBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{}, logging.Nop{})
	if err != nil {
		t.Fatalf("Failed to create default client: %v", err)
	}
	defer client.Close()
	if _, ok := client.(*webclient.NetHTTPClient); !ok {
		t.Fatalf("expected *NetHTTPClient, got %T", client)
	}
}

// TestNewWebClient_ChromeDP verifies that chromedp client can be constructed
func TestNewWebClient_ChromeDP(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{Client: webclient.ClientChromedp}, logging.Nop{})
	if err != nil {
		t.Skipf("Skipping chromedp test: %v", err)
	}
	defer client.Close()
	if _, ok := client.(*webclient.ChromedpClient); !ok {
		t.Fatalf("expected *ChromedpClient, got %T", client)
	}
}

// TestNewWebClient_UnknownBackend verifies that unknown backend returns error
func TestNewWebClient_UnknownBackend(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewWebClient(webclient.Config{Client: "unknown"}, nil)
	if err == nil {
		t.Fatal("Expected error for unknown backend, got nil")
	}
	if client != nil {
		t.Fatal("Expected nil client for unknown backend")
	}
}

func TestListBackends_IncludesDefaults(t *testing.T) {
	t.Parallel()
	got := webclient.ListBackends()
	seen := map[string]bool{}
	for _, b := range got {
		seen[b] = true
	}
	if !seen["nethttp"] || !seen["chromedp"] {
		t.Errorf("expected default backends registered, got %v", got)
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()
	cfg := webclient.Config{}.WithDefaults()
	if cfg.Client != webclient.ClientNetHTTP {
		t.Errorf("client = %q", cfg.Client)
	}
	if cfg.Timeout != webclient.DefaultTimeout {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.UserAgent == "" || cfg.MaxBodyBytes <= 0 || cfg.IdleAfter <= 0 {
		t.Errorf("zero values left unfilled: %+v", cfg)
	}
}
