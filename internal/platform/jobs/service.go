package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentordash/internal/domain/payment"
	"mentordash/internal/platform/config"
)

const (
	JobWeeklyStatements = "weekly_statements"
	JobSessionPurge     = "session_purge"
)

const sessionPurgeInterval = 6 * time.Hour

var ErrUnknownJob = errors.New("unknown job")

type Statements interface {
	Overview(ctx context.Context, mentorIDs []string, window payment.Window) ([]payment.Statement, error)
}

type Archiver interface {
	Save(ctx context.Context, st payment.Statement) error
}

type MentorIDs interface {
	IDs(ctx context.Context) ([]string, error)
}

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type Service struct {
	DB       *pgxpool.Pool
	Cfg      config.Config
	Payments Statements
	Archive  Archiver
	Mentors  MentorIDs
	Sessions SessionPurger
	Now      func() time.Time
	queue    chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config) *Service {
	return &Service{
		DB:    db,
		Cfg:   cfg,
		Now:   time.Now,
		queue: make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.StatementInterval > 0 && s.Payments != nil {
		go s.schedule(ctx, s.Cfg.StatementInterval, JobWeeklyStatements, s.WeeklyStatements)
	}
	if s.Sessions != nil {
		go s.schedule(ctx, sessionPurgeInterval, JobSessionPurge, s.purgeSessions)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// Trigger runs a named job synchronously and records the run.
func (s *Service) Trigger(ctx context.Context, jobType string) (any, error) {
	var run func(context.Context) (any, error)
	switch {
	case jobType == JobWeeklyStatements && s.Payments != nil && s.Mentors != nil && s.Archive != nil:
		run = s.WeeklyStatements
	case jobType == JobSessionPurge && s.Sessions != nil:
		run = s.purgeSessions
	default:
		return nil, ErrUnknownJob
	}
	return s.RunNow(ctx, jobType, run)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
      INSERT INTO job_runs (job_type, status)
      VALUES ($1,$2)
      RETURNING id
    `, j.Type, "running").Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
		details = map[string]any{"error": err.Error(), "partial": details}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration, jobType string, run func(context.Context) (any, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(jobType, run)
		}
	}
}

// WeeklyStatements freezes the previous week's breakdown for every mentor.
// Re-running it for the same week overwrites the stored rows.
func (s *Service) WeeklyStatements(ctx context.Context) (any, error) {
	week := payment.PreviousWeek(s.Now())
	ids, err := s.Mentors.IDs(ctx)
	if err != nil {
		return nil, err
	}
	statements, err := s.Payments.Overview(ctx, ids, week)
	if err != nil {
		return nil, err
	}

	saved := 0
	total := 0.0
	for _, st := range statements {
		if err := s.Archive.Save(ctx, st); err != nil {
			return map[string]any{"weekStart": week.Start, "saved": saved}, err
		}
		saved++
		total += st.Breakdown.FinalPay
	}
	return map[string]any{
		"weekStart":     week.Start,
		"weekEnd":       week.End,
		"mentors":       len(ids),
		"saved":         saved,
		"totalFinalPay": total,
	}, nil
}

func (s *Service) purgeSessions(ctx context.Context) (any, error) {
	deleted, err := s.Sessions.PurgeExpiredSessions(ctx)
	return map[string]any{"deleted": deleted}, err
}
