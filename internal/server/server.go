package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/phishguard/internal/app"
	"github.com/raysh454/phishguard/internal/classifier"
	"github.com/raysh454/phishguard/internal/history"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"

	_ "github.com/raysh454/phishguard/internal/server/docs" // registers the OpenAPI document
)

// Server is the HTTP + WebSocket API surface for PhishGuard.
type Server struct {
	cfg      Config
	app      *app.Application
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer creates a new Server with its own Application.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = cfg.AppConfig.Server.ListenAddr
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	application, err := app.NewApplication(cfg.AppConfig, logger, cfg.AppOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}
	if err := application.Start(); err != nil {
		_ = application.Shutdown(context.Background())
		return nil, fmt.Errorf("starting application: %w", err)
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:    cfg,
		app:    application,
		router: r,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Application returns the underlying application for advanced use (tests, etc.).
func (s *Server) Application() *app.Application {
	return s.app
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/predict/", s.optionsHandler("POST"))
	r.Options("/api/verdicts", s.optionsHandler("GET"))
	r.Options("/api/verdicts/{id}", s.optionsHandler("GET"))
	r.Options("/api/jobs", s.optionsHandler("GET"))
	r.Options("/api/jobs/batch", s.optionsHandler("POST"))
	r.Options("/api/jobs/{jobID}", s.optionsHandler("GET, DELETE"))

	r.Get("/healthz", s.handleHealth)

	// Classification
	r.Post("/api/predict/", s.handlePredict)
	r.Post("/api/predict", s.handlePredict)

	// History
	r.Get("/api/verdicts", s.handleListVerdicts)
	r.Get("/api/verdicts/{id}", s.handleGetVerdict)

	// Jobs over REST
	r.Post("/api/jobs/batch", s.handleStartBatchJob)
	r.Get("/api/jobs", s.handleListJobs)
	r.Get("/api/jobs/{jobID}", s.handleGetJob)
	r.Delete("/api/jobs/{jobID}", s.handleCancelJob)

	// WebSockets
	r.Get("/ws/predict", s.handlePredictWS)
	r.Get("/ws/jobs/batch", s.handleBatchWS)
	r.Get("/ws/jobs/{jobID}", s.handleFollowJobWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the application and underlying resources.
func (s *Server) Close() {
	if s.app != nil {
		if err := s.app.Shutdown(context.Background()); err != nil {
			s.logger.Warn("shutting down application", logging.Field{Key: "error", Value: err.Error()})
		}
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// classifyStatus maps a classification error to an HTTP status.
func classifyStatus(err error) int {
	if errors.Is(err, classifier.ErrArtifactsUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodePredictRequest parses and validates a {"url": ...} payload. On failure
// it returns the status and body to send back.
func decodePredictRequest(data []byte) (string, int, any) {
	var fields map[string]json.RawMessage
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return "", http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"}
		}
	}
	raw, ok := fields["url"]
	if !ok {
		return "", http.StatusBadRequest, ValidationErrorResponse{URL: []string{msgFieldRequired}}
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return "", http.StatusBadRequest, ValidationErrorResponse{URL: []string{msgFieldNull}}
	}
	var u string
	if err := json.Unmarshal(raw, &u); err != nil {
		return "", http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"}
	}
	if u = strings.TrimSpace(u); u == "" {
		return "", http.StatusBadRequest, ValidationErrorResponse{URL: []string{msgFieldBlank}}
	}
	return u, 0, nil
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handlePredict godoc
// @Summary Classify one URL
// @Tags predict
// @Accept json
// @Produce json
// @Param request body PredictRequest true "URL to classify; the scheme is optional"
// @Success 200 {object} model.Result
// @Failure 400 {object} ValidationErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/predict/ [post]
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	target, status, problem := decodePredictRequest(data)
	if problem != nil {
		s.logger.Warn("rejecting predict request", logging.Field{Key: "status", Value: status})
		writeJSON(w, status, problem)
		return
	}

	v, err := s.app.Classify(r.Context(), target)
	if err != nil {
		s.logger.Error("classifying url",
			logging.Field{Key: "url", Value: target},
			logging.Field{Key: "error", Value: err.Error()})
		writeJSON(w, classifyStatus(err), model.NewErrorResult(err))
		return
	}
	writeJSON(w, http.StatusOK, v.Result())
}

// Verdict history

// handleListVerdicts godoc
// @Summary List recorded verdicts, newest first
// @Tags history
// @Produce json
// @Param limit query int false "Maximum entries (default 50, max 1000)"
// @Success 200 {array} history.Entry
// @Failure 404 {object} ErrorResponse
// @Router /api/verdicts [get]
func (s *Server) handleListVerdicts(w http.ResponseWriter, r *http.Request) {
	if s.app.History == nil {
		writeError(w, http.StatusNotFound, "verdict history is disabled")
		return
	}
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := s.app.History.List(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing verdicts", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGetVerdict godoc
// @Summary Get one recorded verdict
// @Tags history
// @Produce json
// @Param id path string true "Verdict id"
// @Success 200 {object} history.Entry
// @Failure 404 {object} ErrorResponse
// @Router /api/verdicts/{id} [get]
func (s *Server) handleGetVerdict(w http.ResponseWriter, r *http.Request) {
	if s.app.History == nil {
		writeError(w, http.StatusNotFound, "verdict history is disabled")
		return
	}
	id := chi.URLParam(r, "id")
	entry, err := s.app.History.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "verdict not found")
		return
	}
	if err != nil {
		s.logger.Warn("getting verdict", logging.Field{Key: "id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Jobs (REST)

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// handleStartBatchJob godoc
// @Summary Classify many URLs in the background
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body StartBatchJobRequest true "URLs to classify"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Router /api/jobs/batch [post]
func (s *Server) handleStartBatchJob(w http.ResponseWriter, r *http.Request) {
	var body StartBatchJobRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	urls := cleanURLs(body.URLs)
	if len(urls) == 0 {
		writeError(w, http.StatusBadRequest, "urls must list at least one url")
		return
	}

	// The job outlives this request.
	job, err := s.app.Orch.StartBatchJob(s.app.Context(), urls)
	if err != nil {
		s.logger.Warn("starting batch job", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.logger.Info("started batch job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "urls", Value: len(urls)})
	writeJSON(w, http.StatusAccepted, job)
}

// handleGetJob godoc
// @Summary Get a job and its results so far
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job id"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /api/jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.app.Orch.GetJob(jobID)
	if job == nil {
		s.logger.Warn("getting job: not found", logging.Field{Key: "job_id", Value: jobID})
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob godoc
// @Summary Cancel a running job
// @Tags jobs
// @Param jobID path string true "Job id"
// @Success 204
// @Router /api/jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.app.Orch.CancelJob(jobID)
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// handleListJobs godoc
// @Summary List jobs, oldest first
// @Tags jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /api/jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.app.Orch.ListJobs()
	writeJSON(w, http.StatusOK, jobs)
}

// WebSockets

// handlePredictWS answers every {"url": ...} message with one result message.
// Bad messages get an error message; the connection stays open.
func (s *Server) handlePredictWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("predict websocket closed", logging.Field{Key: "error", Value: err.Error()})
			}
			return
		}

		var reply any
		target, _, problem := decodePredictRequest(data)
		switch {
		case problem != nil:
			reply = problem
		default:
			v, err := s.app.Classify(ctx, target)
			if err != nil {
				reply = model.NewErrorResult(err)
			} else {
				reply = v.Result()
			}
		}

		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Debug("writing predict websocket reply", logging.Field{Key: "error", Value: err.Error()})
			return
		}
	}
}

// handleBatchWS starts a batch job for the url query parameters and streams
// its events until the job ends.
func (s *Server) handleBatchWS(w http.ResponseWriter, r *http.Request) {
	urls := cleanURLs(r.URL.Query()["url"])
	if len(urls) == 0 {
		writeError(w, http.StatusBadRequest, "at least one url query parameter is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	job, err := s.app.Orch.StartBatchJob(r.Context(), urls)
	if err != nil {
		s.logger.Warn("starting batch job", logging.Field{Key: "error", Value: err.Error()})
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started batch job", logging.Field{Key: "job_id", Value: job.ID})
	_ = conn.WriteJSON(job)
	s.streamJob(conn, job)
}

// handleFollowJobWS streams the events of a job started over REST. Each job
// has one event stream, so only one follower receives a given event.
func (s *Server) handleFollowJobWS(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.app.Orch.GetJob(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	_ = conn.WriteJSON(job)
	s.streamJob(conn, job)
}

func (s *Server) streamJob(conn *websocket.Conn, job *app.Job) {
	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.app.Orch.CancelJob(job.ID)
			return
		}
	}
}
