package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mvp-joe/declcat/internal/catalog"
	"github.com/mvp-joe/declcat/internal/git"
	"github.com/mvp-joe/declcat/internal/project"
	"github.com/mvp-joe/declcat/internal/source"
)

// maxBodyBytes bounds the /analyze request body.
const maxBodyBytes = 1 << 20

// Analyzer runs one analysis for a repository locator.
type Analyzer interface {
	Analyze(ctx context.Context, locator string) (*catalog.AnalysisResult, error)
}

type analyzeRequest struct {
	RepoURL string `json:"repoUrl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the HTTP handler. requestTimeout bounds each request,
// clone included.
func NewRouter(analyzer Analyzer, requestTimeout time.Duration, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{analyzer: analyzer, timeout: requestTimeout, logger: logger}

	// No middleware.Timeout: it writes its own 504 after the handler has
	// already answered with a JSON error.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Post("/analyze", h.analyze)
	return r
}

type handler struct {
	analyzer Analyzer
	timeout  time.Duration
	logger   *slog.Logger
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.RepoURL) == "" {
		writeError(w, http.StatusBadRequest, "repoUrl is required")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.analyzer.Analyze(ctx, req.RepoURL)
	if err != nil {
		status := statusFor(err)
		h.logger.Warn("http.analyze.failed",
			"request_id", middleware.GetReqID(r.Context()),
			"status", status,
			"err", err,
		)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// statusFor maps analysis failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, git.ErrInvalidLocator):
		return http.StatusBadRequest
	case errors.Is(err, project.ErrConfigNotFound),
		errors.Is(err, project.ErrInvalidConfig),
		errors.Is(err, source.ErrMalformed),
		errors.Is(err, catalog.ErrInvalidPolicy):
		return http.StatusUnprocessableEntity
	case errors.Is(err, git.ErrCloneFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
