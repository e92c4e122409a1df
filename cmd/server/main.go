// Command server starts the PhishGuard HTTP and websocket API.
// Usage: go run ./cmd/server [--config phishguard.yaml] [--listen :8080]
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/raysh454/phishguard/internal/cli"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	a, err := cli.ParseServerArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "USAGE:\n  server [flags]\n\nFLAGS:\n%s", cli.Usage(true))
			return
		}
		log.Fatalf("invalid arguments: %v", err)
	}

	cfg, err := a.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.NewLogger("Server", logging.ParseLevel(cfg.LogLevel), os.Stdout)
	srv, err := server.NewServer(server.Config{
		ListenAddr: cfg.Server.ListenAddr,
		AppConfig:  cfg,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("server init error: %v", err)
	}
	defer srv.Close()

	httpSrv := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	logger.Info("listening", logging.Field{Key: "addr", Value: httpSrv.Addr})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", logging.Field{Key: "signal", Value: sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			logger.Warn("http shutdown", logging.Field{Key: "error", Value: err.Error()})
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			srv.Close()
			log.Fatalf("server error: %v", err)
		}
	}
}
