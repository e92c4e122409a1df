package cli_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/raysh454/phishguard/internal/app"
	"github.com/raysh454/phishguard/internal/cli"
)

func TestParseArgs_PositionalURLs(t *testing.T) {
	t.Parallel()
	args := []string{"--json", "https://a.example", " ", "b.example/login"}
	a, err := cli.ParseArgs(args)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if !a.JSON {
		t.Error("expected --json to be set")
	}
	if !reflect.DeepEqual(a.URLs, []string{"https://a.example", "b.example/login"}) {
		t.Errorf("URLs = %v", a.URLs)
	}
	if !reflect.DeepEqual(a.RawArgs, args) {
		t.Errorf("RawArgs = %v", a.RawArgs)
	}
}

func TestParseArgs_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		is   error
		want string
	}{
		{name: "no url", args: []string{"--json"}, is: cli.ErrNoURL},
		{name: "help", args: []string{"-h"}, is: pflag.ErrHelp},
		{name: "unknown flag", args: []string{"--nope", "x.com"}, want: "nope"},
		{name: "bad duration", args: []string{"--timeout", "soon", "x.com"}, want: "timeout"},
		{name: "zero concurrency", args: []string{"-j", "0", "x.com"}, want: "--concurrency"},
		{name: "negative timeout", args: []string{"--timeout=-1s", "x.com"}, want: "--timeout"},
		{name: "listen is server only", args: []string{"--listen", ":1", "x.com"}, want: "listen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := cli.ParseArgs(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseServerArgs(t *testing.T) {
	t.Parallel()
	a, err := cli.ParseServerArgs([]string{"-l", "127.0.0.1:9000", "--history", "/tmp/h.db"})
	if err != nil {
		t.Fatalf("ParseServerArgs: %v", err)
	}
	if a.ListenAddr != "127.0.0.1:9000" || a.HistoryPath != "/tmp/h.db" {
		t.Errorf("unexpected args %+v", a)
	}

	if _, err := cli.ParseServerArgs([]string{"https://stray.example"}); err == nil {
		t.Error("expected positional arguments to be rejected")
	}
	if _, err := cli.ParseServerArgs([]string{"--json"}); err == nil {
		t.Error("expected --json to be unknown to the server")
	}
}

func TestApply_OnlyChangedFlagsOverride(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	cfg.History.Path = "/from/config.db"
	cfg.Fetch.Timeout = 3 * time.Second

	a, err := cli.ParseArgs([]string{"--no-fetch", "--backend", "ChromeDP", "-j", "2", "x.com"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if err := a.Apply(cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if cfg.Fetch.Enabled {
		t.Error("--no-fetch should disable fetching")
	}
	if cfg.Fetch.Backend != "chromedp" {
		t.Errorf("backend = %q, want normalized chromedp", cfg.Fetch.Backend)
	}
	if cfg.Batch.MaxConcurrency != 2 {
		t.Errorf("max concurrency = %d", cfg.Batch.MaxConcurrency)
	}
	// Unset flags leave the config alone.
	if cfg.History.Path != "/from/config.db" || cfg.Fetch.Timeout != 3*time.Second {
		t.Errorf("unset flags overrode config: %q %v", cfg.History.Path, cfg.Fetch.Timeout)
	}
	if a.Changed("history") || !a.Changed("no-fetch") {
		t.Error("Changed does not reflect the command line")
	}
}

func TestApply_ExplicitEmptyHistoryDisables(t *testing.T) {
	t.Parallel()
	cfg := app.DefaultConfig()
	cfg.History.Path = "/from/config.db"

	a, err := cli.ParseArgs([]string{"--history=", "x.com"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if err := a.Apply(cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.History.Path != "" {
		t.Errorf("expected history disabled, got %q", cfg.History.Path)
	}
}

func TestApply_InvalidBackend(t *testing.T) {
	t.Parallel()
	a, err := cli.ParseArgs([]string{"--backend", "curl", "x.com"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if err := a.Apply(app.DefaultConfig()); err == nil || !strings.Contains(err.Error(), "fetch.backend") {
		t.Fatalf("expected backend validation error, got %v", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()
	a, err := cli.ParseArgs([]string{"-c", "/does/not/exist.yaml", "x.com"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if _, err := a.LoadConfig(); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestUsage(t *testing.T) {
	t.Parallel()
	if u := cli.Usage(false); !strings.Contains(u, "--json") || strings.Contains(u, "--listen") {
		t.Errorf("classifier usage wrong:\n%s", u)
	}
	if u := cli.Usage(true); !strings.Contains(u, "--listen") || strings.Contains(u, "--json") {
		t.Errorf("server usage wrong:\n%s", u)
	}
}
