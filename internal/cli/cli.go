package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/raysh454/phishguard/internal/app"
)

// ErrNoURL is returned by ParseArgs when no URL was given.
var ErrNoURL = errors.New("at least one URL argument is required")

// CLIArgs are the command-line arguments for a classification run or for the
// API server. Flags only override the loaded config when they were set.
type CLIArgs struct {
	// ConfigPath is the optional YAML config file.
	ConfigPath string

	// URLs are the positional arguments, in order.
	URLs []string

	// JSON prints Result objects instead of the rendered report.
	JSON bool

	LogLevel    string
	Backend     string
	Timeout     time.Duration
	NoFetch     bool
	ShowBrowser bool
	NoTyposquat bool
	ModelDir    string
	HistoryPath string
	ListenAddr  string
	Concurrency int

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string

	changed map[string]bool
}

func newFlagSet(name string, a *CLIArgs, server bool) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVarP(&a.ConfigPath, "config", "c", "", "Path to a YAML config file")
	fs.StringVar(&a.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	fs.StringVar(&a.ModelDir, "model-dir", "", "Directory holding model.json, scaler.json and features.txt")
	fs.StringVar(&a.Backend, "backend", "", "Fetch backend: nethttp|chromedp")
	fs.DurationVar(&a.Timeout, "timeout", 0, "Page fetch timeout (e.g. 5s)")
	fs.BoolVar(&a.NoFetch, "no-fetch", false, "Skip page fetching; content features stay neutral")
	fs.BoolVar(&a.ShowBrowser, "show-browser", false, "Run the chromedp backend with a visible browser")
	fs.BoolVar(&a.NoTyposquat, "no-typosquat", false, "Disable the typosquatting check")
	fs.StringVar(&a.HistoryPath, "history", "", "SQLite file to record verdicts in (empty disables)")
	if server {
		fs.StringVarP(&a.ListenAddr, "listen", "l", "", "Address the API server listens on")
	} else {
		fs.BoolVar(&a.JSON, "json", false, "Print JSON results instead of the report")
		fs.IntVarP(&a.Concurrency, "concurrency", "j", 0, "Parallel classifications when several URLs are given")
	}

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)
	return fs
}

func parse(name string, args []string, server bool) (*CLIArgs, error) {
	a := &CLIArgs{RawArgs: args, changed: map[string]bool{}}
	fs := newFlagSet(name, a, server)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *pflag.Flag) { a.changed[f.Name] = true })

	for _, u := range fs.Args() {
		if u = strings.TrimSpace(u); u != "" {
			a.URLs = append(a.URLs, u)
		}
	}

	if a.changed["concurrency"] && a.Concurrency < 1 {
		return nil, fmt.Errorf("--concurrency must be at least 1, got %d", a.Concurrency)
	}
	if a.changed["timeout"] && a.Timeout <= 0 {
		return nil, fmt.Errorf("--timeout must be positive, got %s", a.Timeout)
	}
	return a, nil
}

// ParseArgs parses the classifier command line. The function is deterministic
// and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	a, err := parse("phishguard", args, false)
	if err != nil {
		return nil, err
	}
	if len(a.URLs) == 0 {
		return nil, ErrNoURL
	}
	return a, nil
}

// ParseServerArgs parses the API server command line. Positional arguments are
// rejected.
func ParseServerArgs(args []string) (*CLIArgs, error) {
	a, err := parse("phishguard-server", args, true)
	if err != nil {
		return nil, err
	}
	if len(a.URLs) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(a.URLs, " "))
	}
	return a, nil
}

// Usage returns the flag help for the classifier or the server command.
func Usage(server bool) string {
	name := "phishguard"
	if server {
		name = "phishguard-server"
	}
	return newFlagSet(name, &CLIArgs{}, server).FlagUsages()
}

// Changed reports whether the named flag was given on the command line.
func (a *CLIArgs) Changed(name string) bool { return a.changed[name] }

// Apply copies the flags that were set onto cfg, then normalizes and
// validates the result.
func (a *CLIArgs) Apply(cfg *app.Config) error {
	if a.Changed("log-level") {
		cfg.LogLevel = a.LogLevel
	}
	if a.Changed("model-dir") {
		cfg.ModelDir = a.ModelDir
	}
	if a.Changed("backend") {
		cfg.Fetch.Backend = a.Backend
	}
	if a.Changed("timeout") {
		cfg.Fetch.Timeout = a.Timeout
	}
	if a.Changed("no-fetch") {
		cfg.Fetch.Enabled = !a.NoFetch
	}
	if a.Changed("show-browser") {
		cfg.Fetch.ShowBrowser = a.ShowBrowser
	}
	if a.Changed("no-typosquat") {
		cfg.Typosquat.Enabled = !a.NoTyposquat
	}
	if a.Changed("history") {
		cfg.History.Path = a.HistoryPath
	}
	if a.Changed("listen") {
		cfg.Server.ListenAddr = a.ListenAddr
	}
	if a.Changed("concurrency") {
		cfg.Batch.MaxConcurrency = a.Concurrency
	}

	cfg.Normalize()
	return cfg.Validate()
}

// LoadConfig loads ConfigPath (defaults and environment included) and applies
// the command-line overrides on top.
func (a *CLIArgs) LoadConfig() (*app.Config, error) {
	cfg, err := app.LoadConfig(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := a.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
