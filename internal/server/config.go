package server

import (
	"github.com/raysh454/phishguard/internal/app"
	"github.com/raysh454/phishguard/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AppConfig configures the classification pipeline. Nil means app.DefaultConfig().
	AppConfig *app.Config

	// AppOptions are passed to app.NewApplication, mainly so tests can inject
	// a webclient and model artifacts.
	AppOptions []app.Option

	Logger logging.Logger
}
