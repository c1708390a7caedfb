package payment

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// RecordSource yields a mentor's records ordered by submission date, without
// duplicates, restricted to the window.
type RecordSource interface {
	ListRecords(ctx context.Context, mentorID string, window Window) ([]WorkRecord, error)
}

type MentorSource interface {
	BaseRate(ctx context.Context, mentorID string) (float64, error)
}

const overviewConcurrency = 8

type Service struct {
	records RecordSource
	mentors MentorSource
	Now     func() time.Time
}

func NewService(records RecordSource, mentors MentorSource) *Service {
	return &Service{records: records, mentors: mentors, Now: time.Now}
}

func (s *Service) Summary(ctx context.Context, mentorID string, window Window) (Statement, error) {
	rate, err := s.mentors.BaseRate(ctx, mentorID)
	if err != nil {
		return Statement{}, err
	}
	records, err := s.records.ListRecords(ctx, mentorID, window)
	if err != nil {
		return Statement{}, fmt.Errorf("listing records for mentor %s: %w", mentorID, err)
	}
	return Statement{
		MentorID:    mentorID,
		Window:      window,
		RecordCount: len(records),
		Breakdown:   Compute(records, rate),
	}, nil
}

// Weekly loads the span covered by the last weeks weeks once and buckets it.
func (s *Service) Weekly(ctx context.Context, mentorID string, weeks int) ([]WeeklyBreakdown, error) {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	rate, err := s.mentors.BaseRate(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	current := WeekOf(now)
	span := Window{Start: current.Start.AddDate(0, 0, -7*(weeks-1)), End: current.End}
	records, err := s.records.ListRecords(ctx, mentorID, span)
	if err != nil {
		return nil, fmt.Errorf("listing records for mentor %s: %w", mentorID, err)
	}
	return WeeklyBuckets(records, weeks, now, rate), nil
}

// Overview computes a statement per mentor concurrently. Results keep the
// order of mentorIDs.
func (s *Service) Overview(ctx context.Context, mentorIDs []string, window Window) ([]Statement, error) {
	out := make([]Statement, len(mentorIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(overviewConcurrency)
	for i, mentorID := range mentorIDs {
		g.Go(func() error {
			statement, err := s.Summary(gctx, mentorID, window)
			if err != nil {
				return err
			}
			out[i] = statement
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
