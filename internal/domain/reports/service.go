package reports

import (
	"context"
	"time"

	"mentordash/internal/domain/payment"
)

type Counts struct {
	Mentors     int `json:"mentors"`
	Teams       int `json:"teams"`
	RecentTasks int `json:"recentTasks"`
}

type Dashboard struct {
	Counts
	WindowDays  int       `json:"windowDays"`
	TotalPayout float64   `json:"totalPayout"`
	TopMentorID string    `json:"topMentorId,omitempty"`
	TopFinalPay float64   `json:"topFinalPay"`
	GeneratedAt time.Time `json:"generatedAt"`
}

type StoreAPI interface {
	Counts(ctx context.Context, since time.Time) (Counts, error)
	MentorIDs(ctx context.Context) ([]string, error)
}

type Overviewer interface {
	Overview(ctx context.Context, mentorIDs []string, window payment.Window) ([]payment.Statement, error)
}

type Service struct {
	Store    StoreAPI
	Payments Overviewer
	Now      func() time.Time
}

func NewService(store StoreAPI, payments Overviewer) *Service {
	return &Service{Store: store, Payments: payments, Now: time.Now}
}

// Dashboard summarises the recent window across all mentors.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.Now()
	window := payment.LastDays(now, payment.RecentWindowDays)
	counts, err := s.Store.Counts(ctx, window.Start)
	if err != nil {
		return Dashboard{}, err
	}
	ids, err := s.Store.MentorIDs(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	statements, err := s.Payments.Overview(ctx, ids, window)
	if err != nil {
		return Dashboard{}, err
	}
	return summarize(counts, statements, now), nil
}

func summarize(counts Counts, statements []payment.Statement, now time.Time) Dashboard {
	out := Dashboard{Counts: counts, WindowDays: payment.RecentWindowDays, GeneratedAt: now}
	for _, st := range statements {
		out.TotalPayout += st.Breakdown.FinalPay
		if st.Breakdown.FinalPay > out.TopFinalPay {
			out.TopFinalPay = st.Breakdown.FinalPay
			out.TopMentorID = st.MentorID
		}
	}
	return out
}
