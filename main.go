// Command phishguard classifies one or more URLs as phishing or legitimate.
// Usage: phishguard [flags] <url> [url...]
// Exit status: 0 legitimate, 1 phishing, 2 error.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/raysh454/phishguard/internal/app"
	"github.com/raysh454/phishguard/internal/cli"
	"github.com/raysh454/phishguard/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	a, err := cli.ParseArgs(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stderr, "USAGE:\n  phishguard [flags] <url> [url...]\n\nFLAGS:\n%s", cli.Usage(false))
			return cli.ExitLegitimate
		}
		fmt.Fprintf(stderr, "phishguard: %v\n\nFLAGS:\n%s", err, cli.Usage(false))
		return cli.ExitError
	}

	cfg, err := a.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "phishguard: %v\n", err)
		return cli.ExitError
	}

	logger := logging.NewLogger("phishguard", logging.ParseLevel(cfg.LogLevel), stderr)
	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "phishguard: %v\n", err)
		return cli.ExitError
	}
	defer func() {
		if err := application.Shutdown(context.Background()); err != nil {
			logger.Warn("shutdown", logging.Field{Key: "error", Value: err.Error()})
		}
	}()
	if err := application.Start(); err != nil {
		fmt.Fprintf(stderr, "phishguard: %v\n", err)
		return cli.ExitError
	}

	ctx, stop := signal.NotifyContext(application.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	items := application.Engine.ClassifyBatch(ctx, a.URLs, nil)

	if a.JSON {
		err = cli.WriteJSON(stdout, items)
	} else {
		err = cli.RenderReport(stdout, items)
	}
	if err != nil {
		fmt.Fprintf(stderr, "phishguard: %v\n", err)
		return cli.ExitError
	}
	return cli.ExitCode(items)
}
