// Package server serves drawn tag graphs over HTTP.
//
// Routes:
//
//	GET /            HTML page with the network widget
//	GET /graph.json  nodes and edges
//	GET /vis.json    widget payload {data, options}
//	GET /graph.dot   Graphviz source
//	GET /graph.svg   Graphviz rendering
//	GET /healthz     liveness
//
// Every request draws afresh; GraphQL responses may still come from the
// configured cache. Query parameters exclude_id and exclude_name (both
// repeatable), height and configure adjust a single draw.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/taggraph/pkg/errors"
	"github.com/matzehuels/taggraph/pkg/pipeline"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "127.0.0.1:8080"

// drawTimeout bounds one draw including all fetches.
const drawTimeout = 60 * time.Second

// Config configures a Server.
type Config struct {
	Runner *pipeline.Runner
	// Defaults is the base options for every draw. Formats is overridden
	// per route.
	Defaults pipeline.Options
	Version  string
	Logger   *log.Logger
}

// Server serves tag graphs.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	version  string
	logger   *log.Logger
	router   chi.Router
}

// New builds the router.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		runner:   cfg.Runner,
		defaults: cfg.Defaults,
		version:  cfg.Version,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(withLogging(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/", s.draw(pipeline.FormatHTML, "text/html; charset=utf-8"))
	r.Get("/graph.json", s.draw(pipeline.FormatJSON, "application/json"))
	r.Get("/vis.json", s.draw(pipeline.FormatVis, "application/json"))
	r.Get("/graph.dot", s.draw(pipeline.FormatDOT, "text/vnd.graphviz; charset=utf-8"))
	r.Get("/graph.svg", s.draw(pipeline.FormatSVG, "image/svg+xml"))

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving tag graph", "addr", "http://"+addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) draw(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.requestOptions(r, format)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), drawTimeout)
		defer cancel()

		res, err := s.runner.Draw(ctx, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Tag-Count", strconv.Itoa(res.Stats.NodeCount))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Artifacts[format])
	}
}

// requestOptions copies the defaults and applies query parameters.
func (s *Server) requestOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.defaults.Clone()
	opts.Formats = []string{format}

	q := r.URL.Query()
	opts.ExcludeIDs = append(opts.ExcludeIDs, q["exclude_id"]...)
	opts.ExcludeNames = append(opts.ExcludeNames, q["exclude_name"]...)

	if v := q.Get("height"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "height must be a positive integer, got %q", v)
		}
		opts.Height = h
	}
	if v := q.Get("configure"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "configure must be a boolean, got %q", v)
		}
		opts.ConfigurePanel = &on
	}
	return opts, opts.ValidateAndSetDefaults()
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("draw failed", "error", err, "request_id", RequestID(r.Context()))
	}
	writeJSON(w, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: RequestID(r.Context()),
	})
}

func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errors.GetCode(err).Category() {
	case errors.CategoryEmpty:
		return http.StatusNotFound
	case errors.CategoryInput:
		return http.StatusBadRequest
	case errors.CategoryUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
