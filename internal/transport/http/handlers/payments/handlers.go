package paymentshandler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mentordash/internal/domain/auth"
	"mentordash/internal/domain/mentor"
	"mentordash/internal/domain/payment"
	"mentordash/internal/platform/metrics"
	"mentordash/internal/transport/http/api"
	"mentordash/internal/transport/http/middleware"
	"mentordash/internal/transport/http/shared"
)

const (
	maxComputeRecords = 10000
	maxWeeks          = 52
	maxHistory        = 104
)

type Service interface {
	Summary(ctx context.Context, mentorID string, window payment.Window) (payment.Statement, error)
	Weekly(ctx context.Context, mentorID string, weeks int) ([]payment.WeeklyBreakdown, error)
	Overview(ctx context.Context, mentorIDs []string, window payment.Window) ([]payment.Statement, error)
}

type Mentors interface {
	List(ctx context.Context, team string) ([]mentor.Mentor, error)
	Get(ctx context.Context, id string) (mentor.Mentor, error)
}

type History interface {
	List(ctx context.Context, mentorID string, limit int) ([]payment.ArchivedStatement, error)
}

type Handler struct {
	Payments Service
	Mentors  Mentors
	History  History
	Metrics  *metrics.Collector
	Now      func() time.Time
	// Weeks is the default number of weeks for weekly breakdowns.
	Weeks int
}

func NewHandler(payments Service, mentors Mentors, history History, collector *metrics.Collector) *Handler {
	return &Handler{Payments: payments, Mentors: mentors, History: history, Metrics: collector, Now: time.Now, Weeks: payment.DefaultWeeks}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/mentors/{mentorID}/payment", h.handleSummary)
		r.Get("/mentors/{mentorID}/payment/weekly", h.handleWeekly)
		r.Get("/mentors/{mentorID}/payment/statement.pdf", h.handleStatementPDF)
		r.Get("/mentors/{mentorID}/payment/history", h.handleHistory)
		r.Post("/payments/compute", h.handleCompute)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Get("/payments/overview", h.handleOverview)
			r.Get("/payments/export", h.handleExport)
		})
	})
}

func mentorScope(w http.ResponseWriter, r *http.Request) (string, bool) {
	mentorID := chi.URLParam(r, "mentorID")
	user, _ := middleware.GetUser(r.Context())
	if !user.CanAccessMentor(mentorID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to access this mentor", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return mentorID, true
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID, ok := mentorScope(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	window := shared.ParseWindow(r, h.Now(), payment.RecentWindowDays, v)
	if v.Reject(w, reqID) {
		return
	}
	statement, err := h.Payments.Summary(r.Context(), mentorID, window)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	api.Success(w, statement, reqID)
}

func (h *Handler) handleWeekly(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID, ok := mentorScope(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	weeks := shared.ParseBoundedInt(r, "weeks", h.defaultWeeks(), maxWeeks, v)
	if v.Reject(w, reqID) {
		return
	}
	weekly, err := h.Payments.Weekly(r.Context(), mentorID, weeks)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	api.Success(w, weekly, reqID)
}

func (h *Handler) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID, ok := mentorScope(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	window := shared.ParseWindow(r, h.Now(), payment.RecentWindowDays, v)
	if v.Reject(w, reqID) {
		return
	}

	m, err := h.Mentors.Get(r.Context(), mentorID)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	statement, err := h.Payments.Summary(r.Context(), mentorID, window)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	weekly, err := h.Payments.Weekly(r.Context(), mentorID, h.defaultWeeks())
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	var buf bytes.Buffer
	doc := payment.StatementDoc{
		MentorName:  m.Name,
		MentorEmail: m.Email,
		Statement:   statement,
		Weekly:      weekly,
		GeneratedAt: h.Now(),
	}
	if err := payment.RenderStatementPDF(&buf, doc); err != nil {
		slog.Error("statement pdf failed", "mentorId", mentorID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "statement_failed", "failed to render statement", reqID)
		return
	}
	h.Metrics.StatementPrinted()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=statement-%s.pdf", mentorID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("statement write failed", "err", err)
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID, ok := mentorScope(w, r)
	if !ok {
		return
	}
	if h.History == nil {
		api.Success(w, []payment.ArchivedStatement{}, reqID)
		return
	}
	v := shared.NewValidator()
	limit := shared.ParseBoundedInt(r, "limit", h.defaultWeeks(), maxHistory, v)
	if v.Reject(w, reqID) {
		return
	}
	history, err := h.History.List(r.Context(), mentorID, limit)
	if err != nil {
		slog.Error("statement history failed", "mentorId", mentorID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "history_failed", "failed to load statement history", reqID)
		return
	}
	api.Success(w, history, reqID)
}

type computeRequest struct {
	Records       []payment.WorkRecord `json:"records"`
	RatePerMinute float64              `json:"ratePerMinute"`
}

// handleCompute runs the calculator over caller supplied records without
// touching storage.
func (h *Handler) handleCompute(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload computeRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	if payload.RatePerMinute < 0 || math.IsInf(payload.RatePerMinute, 0) {
		v.Add("ratePerMinute", "must be a non-negative number")
	}
	if len(payload.Records) > maxComputeRecords {
		v.Add("records", "must contain at most "+strconv.Itoa(maxComputeRecords)+" entries")
	}
	for i, record := range payload.Records {
		field := fmt.Sprintf("records[%d]", i)
		if record.TaskType == "" {
			v.Add(field+".taskType", "is required")
		}
		if record.Minutes < 0 {
			v.Add(field+".minutes", "must not be negative")
		}
		if record.ChaptersCompleted < 0 {
			v.Add(field+".chaptersCompleted", "must not be negative")
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	breakdown := payment.Compute(payload.Records, payload.RatePerMinute)
	h.Metrics.PaymentComputed(1)
	api.Success(w, breakdown, reqID)
}

type overviewRow struct {
	MentorID    string            `json:"mentorId"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	RecordCount int               `json:"recordCount"`
	Breakdown   payment.Breakdown `json:"breakdown"`
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	rows, window, ok := h.overview(w, r)
	if !ok {
		return
	}
	api.Success(w, map[string]any{"window": window, "mentors": rows}, reqID)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	rows, _, ok := h.overview(w, r)
	if !ok {
		return
	}
	register := make([]payment.RegisterRow, 0, len(rows))
	for _, row := range rows {
		register = append(register, payment.RegisterRow{MentorID: row.MentorID, Name: row.Name, Email: row.Email, Breakdown: row.Breakdown})
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=payment-register.csv")
	w.WriteHeader(http.StatusOK)
	if err := payment.WriteRegisterCSV(w, register); err != nil {
		slog.Warn("payment register write failed", "err", err)
	}
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) ([]overviewRow, payment.Window, bool) {
	reqID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	window := shared.ParseWindow(r, h.Now(), payment.RecentWindowDays, v)
	if v.Reject(w, reqID) {
		return nil, window, false
	}

	mentors, err := h.Mentors.List(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		slog.Error("overview mentor list failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "overview_failed", "failed to compute overview", reqID)
		return nil, window, false
	}
	ids := make([]string, len(mentors))
	for i, m := range mentors {
		ids[i] = m.ID
	}
	statements, err := h.Payments.Overview(r.Context(), ids, window)
	if err != nil {
		slog.Error("overview failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "overview_failed", "failed to compute overview", reqID)
		return nil, window, false
	}
	h.Metrics.PaymentComputed(len(statements))

	rows := make([]overviewRow, len(mentors))
	for i, m := range mentors {
		rows[i] = overviewRow{
			MentorID:    m.ID,
			Name:        m.Name,
			Email:       m.Email,
			RecordCount: statements[i].RecordCount,
			Breakdown:   statements[i].Breakdown,
		}
	}
	return rows, window, true
}

func (h *Handler) defaultWeeks() int {
	if h.Weeks <= 0 || h.Weeks > maxWeeks {
		return payment.DefaultWeeks
	}
	return h.Weeks
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	if errors.Is(err, mentor.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "mentor not found", reqID)
		return
	}
	slog.Error("payment request failed", "err", err)
	api.Fail(w, http.StatusInternalServerError, "payment_failed", "failed to compute payment", reqID)
}
