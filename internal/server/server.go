// Package server exposes simples3 commands over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/simples3/internal/validation"
)

// maxBodyBytes bounds a command request body.
const maxBodyBytes = 32 << 20

// localPathParams name files on the server host. Callers may only reach
// paths below the client filesystem root.
var localPathParams = []string{simples3.ParamSaveAs, simples3.ParamFile}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	client     *simples3.Client
	logger     *slog.Logger
}

// CommandResponse is the body of a successful command call.
type CommandResponse struct {
	Command string `json:"command"`
	Result  any    `json:"result"`
}

// ErrorResponse is the body of a failed call.
type ErrorResponse struct {
	Error string           `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

// New constructs a Server listening on addr. A nil gatherer disables /metrics.
func New(addr string, client *simples3.Client, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	s := &Server{
		client: client,
		logger: logger,
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(5*time.Minute),
	)
	router.Get("/healthz", healthz)
	router.Route("/commands", func(r chi.Router) {
		r.Get("/", s.listCommands)
		r.Post("/{name}", s.runCommand)
	})
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.router = router

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listCommands(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"commands": s.client.Commands()})
}

func (s *Server) runCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	params := simples3.Params{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&params); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, "invalid JSON body: "+err.Error())
		return
	}

	for _, key := range localPathParams {
		if err := validation.ValidateLocalPath(params.String(key)); err != nil {
			writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, key+": "+err.Error())
			return
		}
	}

	res, err := s.client.Execute(r.Context(), name, params)
	if err != nil {
		code := errors.CodeOf(err)
		if s.logger != nil && code == errors.CodeInternal {
			s.logger.ErrorContext(r.Context(), "command failed",
				"command", name, "request_id", middleware.GetReqID(r.Context()), "error", err)
		}
		writeError(w, errors.HTTPStatus(code), code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CommandResponse{Command: name, Result: res})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, code errors.ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
