package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentordash/internal/domain/payment"
)

type fakeStore struct {
	since time.Time
	err   error
}

func (f *fakeStore) Counts(_ context.Context, since time.Time) (Counts, error) {
	f.since = since
	return Counts{Mentors: 2, Teams: 1, RecentTasks: 7}, f.err
}

func (f *fakeStore) MentorIDs(context.Context) ([]string, error) {
	return []string{"m1", "m2"}, nil
}

type fakeOverview struct {
	window payment.Window
}

func (f *fakeOverview) Overview(_ context.Context, ids []string, window payment.Window) ([]payment.Statement, error) {
	f.window = window
	return []payment.Statement{
		{MentorID: ids[0], Breakdown: payment.Breakdown{FinalPay: 1200}},
		{MentorID: ids[1], Breakdown: payment.Breakdown{FinalPay: 3900}},
	}, nil
}

func TestDashboardAggregatesOverview(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	overview := &fakeOverview{}
	svc := NewService(store, overview)
	svc.Now = func() time.Time { return now }

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Mentors)
	assert.Equal(t, 7, got.RecentTasks)
	assert.Equal(t, 5100.0, got.TotalPayout)
	assert.Equal(t, "m2", got.TopMentorID)
	assert.Equal(t, 3900.0, got.TopFinalPay)
	assert.Equal(t, payment.RecentWindowDays, got.WindowDays)

	wantStart := now.AddDate(0, 0, -payment.RecentWindowDays)
	assert.Equal(t, wantStart, store.since)
	assert.Equal(t, wantStart, overview.window.Start)
	assert.True(t, overview.window.End.IsZero())
}

func TestDashboardPropagatesStoreError(t *testing.T) {
	svc := NewService(&fakeStore{err: errors.New("boom")}, &fakeOverview{})
	_, err := svc.Dashboard(context.Background())
	assert.Error(t, err)
}

func TestDecodeDetails(t *testing.T) {
	assert.Empty(t, decodeDetails(nil))
	assert.Equal(t, map[string]any{"mentors": float64(3)}, decodeDetails([]byte(`{"mentors":3}`)))
	assert.Equal(t, map[string]any{"raw": "nope"}, decodeDetails([]byte("nope")))
}

func TestBuildJobRunsBaseQuery(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args := buildJobRunsBaseQuery(JobRunFilter{JobType: "weekly_statements", Status: " ", StartedFrom: &from})
	assert.Contains(t, query, "job_type = $1")
	assert.Contains(t, query, "started_at >= $2")
	assert.NotContains(t, query, "status =")
	assert.Equal(t, []any{"weekly_statements", from}, args)
}
