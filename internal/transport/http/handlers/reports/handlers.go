package reportshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"mentordash/internal/domain/auth"
	"mentordash/internal/domain/reports"
	"mentordash/internal/platform/jobs"
	"mentordash/internal/transport/http/api"
	"mentordash/internal/transport/http/middleware"
	"mentordash/internal/transport/http/shared"
)

type Dashboards interface {
	Dashboard(ctx context.Context) (reports.Dashboard, error)
}

type JobRuns interface {
	ListJobRuns(ctx context.Context, filter reports.JobRunFilter, limit, offset int) ([]reports.JobRun, error)
	CountJobRuns(ctx context.Context, filter reports.JobRunFilter) (int, error)
	JobRunByID(ctx context.Context, runID string) (reports.JobRun, error)
}

type Trigger interface {
	Trigger(ctx context.Context, jobType string) (any, error)
}

type Handler struct {
	Dashboards Dashboards
	Runs       JobRuns
	Jobs       Trigger
}

func NewHandler(dashboards Dashboards, runs JobRuns, trigger Trigger) *Handler {
	return &Handler{Dashboards: dashboards, Runs: runs, Jobs: trigger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/jobs", h.handleListJobRuns)
		r.Get("/jobs/{runID}", h.handleGetJobRun)
		r.Post("/jobs/{jobType}/run", h.handleRunJob)
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	dashboard, err := h.Dashboards.Dashboard(r.Context())
	if err != nil {
		slog.Error("dashboard failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to build dashboard", reqID)
		return
	}
	api.Success(w, dashboard, reqID)
}

func (h *Handler) handleListJobRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	q := r.URL.Query()

	v := shared.NewValidator()
	filter := reports.JobRunFilter{
		JobType: strings.TrimSpace(q.Get("jobType")),
		Status:  strings.TrimSpace(q.Get("status")),
	}
	v.Enum("status", filter.Status, []string{"running", "completed", "failed"}, "must be running, completed or failed")
	if raw := q.Get("startedFrom"); raw != "" {
		if from, ok := v.Date("startedFrom", raw); ok {
			filter.StartedFrom = &from
		}
	}
	if raw := q.Get("startedTo"); raw != "" {
		if to, ok := v.Date("startedTo", raw); ok {
			filter.StartedTo = &to
		}
	}
	if filter.StartedFrom != nil && filter.StartedTo != nil {
		v.DateOrder("startedFrom", *filter.StartedFrom, "startedTo", *filter.StartedTo)
	}
	if v.Reject(w, reqID) {
		return
	}

	total, err := h.Runs.CountJobRuns(r.Context(), filter)
	if err != nil {
		slog.Warn("job run count failed", "err", err)
	}
	runs, err := h.Runs.ListJobRuns(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		slog.Error("job run list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, runs, reqID)
}

func (h *Handler) handleGetJobRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	run, err := h.Runs.JobRunByID(r.Context(), chi.URLParam(r, "runID"))
	switch {
	case errors.Is(err, reports.ErrJobRunNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", reqID)
		return
	case err != nil:
		slog.Error("job run lookup failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "job_run_failed", "failed to load job run", reqID)
		return
	}
	api.Success(w, run, reqID)
}

func (h *Handler) handleRunJob(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	jobType := chi.URLParam(r, "jobType")
	if h.Jobs == nil {
		api.Fail(w, http.StatusServiceUnavailable, "jobs_unavailable", "job runner is not configured", reqID)
		return
	}
	details, err := h.Jobs.Trigger(r.Context(), jobType)
	switch {
	case errors.Is(err, jobs.ErrUnknownJob):
		api.Fail(w, http.StatusNotFound, "unknown_job", "unknown job", reqID)
		return
	case err != nil:
		slog.Error("manual job run failed", "jobType", jobType, "err", err)
		api.FailWithDetails(w, http.StatusInternalServerError, "job_failed", "job run failed", map[string]any{"result": details}, reqID)
		return
	}
	api.Success(w, map[string]any{"jobType": jobType, "result": details}, reqID)
}
