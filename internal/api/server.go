// Package api implements the HTTP server behind "gatefold serve": a small
// JSON API over the optimization pipeline with synchronous and job-based
// endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/mhalver/gatefold/pkg/errors"
	"github.com/mhalver/gatefold/pkg/observability"
	"github.com/mhalver/gatefold/pkg/pipeline"
)

// Server routes API requests to the pipeline runner.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	logger *log.Logger
	jobs   *jobStore
}

// NewServer creates the API server. The runner is required; a nil logger
// uses the package default.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		logger: logger,
		jobs:   newJobStore(),
	}

	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Post("/v1/optimize", s.handleOptimize)
	r.Post("/v1/jobs", s.handleCreateJob)
	r.Get("/v1/jobs/{id}", s.handleGetJob)
	r.Get("/healthz", s.handleHealth)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// optimizeRequest is the JSON body of POST /v1/optimize and POST /v1/jobs.
type optimizeRequest struct {
	Source    string   `json:"source"`
	Schedule  string   `json:"schedule,omitempty"`
	Rounds    int      `json:"rounds,omitempty"`
	Formats   []string `json:"formats,omitempty"`
	ShowWires bool     `json:"show_wires,omitempty"`
	Refresh   bool     `json:"refresh,omitempty"`
}

// optimizeResponse is the JSON result of a completed optimization.
type optimizeResponse struct {
	SourceHash  string            `json:"source_hash"`
	Optimized   string            `json:"optimized"`
	Qubits      int               `json:"qubits"`
	GatesBefore int               `json:"gates_before"`
	GatesAfter  int               `json:"gates_after"`
	Removed     int               `json:"removed"`
	Relabeled   int               `json:"relabeled"`
	Cached      bool              `json:"cached"`
	Artifacts   map[string][]byte `json:"artifacts,omitempty"`
}

func (r optimizeRequest) options() pipeline.Options {
	return pipeline.Options{
		Source:    r.Source,
		Schedule:  r.Schedule,
		Rounds:    r.Rounds,
		Formats:   r.Formats,
		ShowWires: r.ShowWires,
		Refresh:   r.Refresh,
	}
}

func toResponse(result *pipeline.Result) optimizeResponse {
	return optimizeResponse{
		SourceHash:  result.SourceHash,
		Optimized:   result.Optimized,
		Qubits:      result.Stats.Qubits,
		GatesBefore: result.Stats.GatesBefore,
		GatesAfter:  result.Stats.GatesAfter,
		Removed:     result.Removed,
		Relabeled:   result.Relabeled,
		Cached:      result.CacheInfo.OptimizeHit,
		Artifacts:   result.Artifacts,
	}
}

// handleOptimize runs the pipeline synchronously.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidQASM, err, "decoding request body"))
		return
	}

	result, err := s.runner.Execute(r.Context(), req.options())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(result))
}

// handleCreateJob queues an asynchronous optimization and returns its ID.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidQASM, err, "decoding request body"))
		return
	}
	// Reject malformed options before queueing so the client hears about
	// them synchronously.
	opts := req.options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	job := s.jobs.create()
	go s.runJob(job, opts)

	s.logger.Info("job queued", "job_id", job.ID)
	s.writeJSON(w, http.StatusAccepted, jobResponse{ID: job.ID.String(), Status: string(job.Status())})
}

// runJob executes a queued optimization and records its outcome.
func (s *Server) runJob(job *job, opts pipeline.Options) {
	job.setRunning()

	// Jobs outlive their originating request, so they do not inherit its
	// context.
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.logger.Error("job failed", "job_id", job.ID, "err", err)
		job.fail(err)
		return
	}
	resp := toResponse(result)
	job.finish(&resp)
}

// jobResponse is the JSON shape of a job status lookup.
type jobResponse struct {
	ID     string            `json:"id"`
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Result *optimizeResponse `json:"result,omitempty"`
}

// handleGetJob reports the status and, when finished, the result of a job.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.jobs.get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := jobResponse{ID: job.ID.String(), Status: string(job.Status())}
	switch job.Status() {
	case jobStatusDone:
		resp.Result = job.result()
	case jobStatusFailed:
		resp.Error = job.errMessage()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleHealth is a liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the JSON shape of every error reply.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps structured error codes to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidQASM, errors.ErrCodeInvalidGate,
		errors.ErrCodeInvalidSchedule, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case errors.ErrCodeGraphCycle, errors.ErrCodeWireOrder:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeJobNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

// logRequests logs every request and feeds the API observability hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.API().OnRequest(r.Context(), r.Method, r.URL.Path)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		observability.API().OnResponse(r.Context(), r.Method, r.URL.Path, sw.status, duration)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", duration)
	})
}

// statusWriter captures the response status for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
