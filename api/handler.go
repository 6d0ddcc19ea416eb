package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/dao"
)

// Commander is the command API served over HTTP
type Commander interface {
	CreateProcess(ctx context.Context, spec process.Spec) (int, error)
	KillProcess(ctx context.Context, pid int) error
	ListProcesses(ctx context.Context, states ...process.State) ([]process.Summary, error)
	MemoryStatus(ctx context.Context) allocator.Status
	Stats() progress.Counters
}

// PIDResponse carries a process id
type PIDResponse struct {
	PID int `json:"pid"`
}

// ErrorResponse carries a failure message
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler routes HTTP requests to a Commander
type Handler struct {
	commander Commander
	logger    *slog.Logger
	router    chi.Router
}

// NewHandler creates an HTTP handler; a nil logger uses slog.Default
func NewHandler(commander Commander, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{commander: commander, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequest)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/processes", h.createProcess)
		r.Get("/processes", h.listProcesses)
		r.Delete("/processes/{pid}", h.killProcess)
		r.Get("/memory", h.memoryStatus)
		r.Get("/stats", h.stats)
	})
	h.router = r
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) createProcess(w http.ResponseWriter, r *http.Request) {
	spec := process.NewSpec(0, 0)
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", process.ErrInvalidArgument, err))
		return
	}
	pid, err := h.commander.CreateProcess(r.Context(), spec)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, PIDResponse{PID: pid})
}

func (h *Handler) killProcess(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(chi.URLParam(r, "pid"))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: pid: %v", process.ErrInvalidArgument, err))
		return
	}
	if err = h.commander.KillProcess(r.Context(), pid); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, PIDResponse{PID: pid})
}

func (h *Handler) listProcesses(w http.ResponseWriter, r *http.Request) {
	var states []process.State
	for _, name := range r.URL.Query()["state"] {
		state, err := process.ParseState(name)
		if err != nil {
			h.writeError(w, fmt.Errorf("%w: %v", process.ErrInvalidArgument, err))
			return
		}
		states = append(states, state)
	}
	summaries, err := h.commander.ListProcesses(r.Context(), states...)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []process.Summary{}
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) memoryStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.commander.MemoryStatus(r.Context()))
}

func (h *Handler) stats(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.commander.Stats())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, process.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, dao.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, allocator.ErrOutOfMemory):
		status = http.StatusInsufficientStorage
	}
	h.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to write response", slog.Any("error", err))
	}
}

func (h *Handler) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(started)))
	})
}
