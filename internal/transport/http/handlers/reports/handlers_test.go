package reportshandler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentordash/internal/domain/reports"
	"mentordash/internal/platform/jobs"
	"mentordash/internal/transport/http/handlers/handlertest"
)

type stubDashboards struct{}

func (stubDashboards) Dashboard(context.Context) (reports.Dashboard, error) {
	return reports.Dashboard{Counts: reports.Counts{Mentors: 3, Teams: 1, RecentTasks: 12}, WindowDays: 90, TotalPayout: 4200}, nil
}

type stubRuns struct {
	filter reports.JobRunFilter
	limit  int
}

func (s *stubRuns) ListJobRuns(_ context.Context, filter reports.JobRunFilter, limit, _ int) ([]reports.JobRun, error) {
	s.filter = filter
	s.limit = limit
	return []reports.JobRun{{ID: "r1", JobType: jobs.JobWeeklyStatements, Status: "completed", StartedAt: time.Now()}}, nil
}

func (s *stubRuns) CountJobRuns(context.Context, reports.JobRunFilter) (int, error) { return 7, nil }

func (s *stubRuns) JobRunByID(_ context.Context, id string) (reports.JobRun, error) {
	if id != "r1" {
		return reports.JobRun{}, reports.ErrJobRunNotFound
	}
	return reports.JobRun{ID: "r1", JobType: jobs.JobWeeklyStatements, Status: "completed"}, nil
}

type stubTrigger struct{}

func (stubTrigger) Trigger(_ context.Context, jobType string) (any, error) {
	switch jobType {
	case jobs.JobWeeklyStatements:
		return map[string]any{"saved": 2}, nil
	case jobs.JobSessionPurge:
		return map[string]any{"deleted": 0}, errors.New("database unavailable")
	}
	return nil, jobs.ErrUnknownJob
}

func newRouter(admin bool) (http.Handler, *stubRuns) {
	runs := &stubRuns{}
	claims := handlertest.Mentor
	if admin {
		claims = handlertest.Admin
	}
	return handlertest.Router(NewHandler(stubDashboards{}, runs, stubTrigger{}), claims), runs
}

func TestDashboard(t *testing.T) {
	router, _ := newRouter(true)
	rec := handlertest.Do(t, router, http.MethodGet, "/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d reports.Dashboard
	handlertest.Decode(t, rec, &d)
	assert.Equal(t, 3, d.Mentors)
	assert.Equal(t, 4200.0, d.TotalPayout)
}

func TestReportsRequireAdmin(t *testing.T) {
	router, _ := newRouter(false)
	assert.Equal(t, http.StatusForbidden, handlertest.Do(t, router, http.MethodGet, "/reports/dashboard", nil).Code)
	assert.Equal(t, http.StatusForbidden, handlertest.Do(t, router, http.MethodPost, "/reports/jobs/weekly_statements/run", nil).Code)
}

func TestListJobRunsFilters(t *testing.T) {
	router, runs := newRouter(true)
	rec := handlertest.Do(t, router, http.MethodGet, "/reports/jobs?jobType=weekly_statements&status=completed&startedFrom=2026-03-01&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, jobs.JobWeeklyStatements, runs.filter.JobType)
	require.NotNil(t, runs.filter.StartedFrom)
	assert.Nil(t, runs.filter.StartedTo)
	assert.Equal(t, 10, runs.limit)

	rec = handlertest.Do(t, router, http.MethodGet, "/reports/jobs?status=exploded", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = handlertest.Do(t, router, http.MethodGet, "/reports/jobs?startedFrom=2026-03-09&startedTo=2026-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobRun(t *testing.T) {
	router, _ := newRouter(true)
	assert.Equal(t, http.StatusOK, handlertest.Do(t, router, http.MethodGet, "/reports/jobs/r1", nil).Code)
	assert.Equal(t, http.StatusNotFound, handlertest.Do(t, router, http.MethodGet, "/reports/jobs/r2", nil).Code)
}

func TestRunJob(t *testing.T) {
	router, _ := newRouter(true)

	rec := handlertest.Do(t, router, http.MethodPost, "/reports/jobs/weekly_statements/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		JobType string         `json:"jobType"`
		Result  map[string]any `json:"result"`
	}
	handlertest.Decode(t, rec, &body)
	assert.Equal(t, float64(2), body.Result["saved"])

	assert.Equal(t, http.StatusNotFound, handlertest.Do(t, router, http.MethodPost, "/reports/jobs/leave_accrual/run", nil).Code)
	assert.Equal(t, http.StatusInternalServerError, handlertest.Do(t, router, http.MethodPost, "/reports/jobs/session_purge/run", nil).Code)
}
