package taskshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mentordash/internal/domain/audit"
	"mentordash/internal/domain/mentor"
	"mentordash/internal/domain/payment"
	"mentordash/internal/domain/task"
	"mentordash/internal/platform/metrics"
	"mentordash/internal/transport/http/api"
	"mentordash/internal/transport/http/middleware"
	"mentordash/internal/transport/http/shared"
)

const (
	idempotencyEndpoint = "task.create"
	defaultKeepAlive    = 25 * time.Second
)

type Service interface {
	Create(ctx context.Context, in task.Input) (task.Task, error)
	Get(ctx context.Context, id string) (task.Task, error)
	ListByMentor(ctx context.Context, mentorID string, window payment.Window) ([]task.Task, error)
	Delete(ctx context.Context, id string) (task.Task, error)
}

type Idempotency interface {
	Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

type Subscriber interface {
	Subscribe(mentorID string) (<-chan task.Change, func())
}

type Summarizer interface {
	Summary(ctx context.Context, mentorID string, window payment.Window) (payment.Statement, error)
}

type Handler struct {
	Tasks       Service
	Idempotency Idempotency
	Changes     Subscriber
	Payments    Summarizer
	Audit       audit.Recorder
	Metrics     *metrics.Collector
	Now         func() time.Time
	KeepAlive   time.Duration
}

func NewHandler(tasks Service, changes Subscriber, payments Summarizer) *Handler {
	return &Handler{
		Tasks:     tasks,
		Changes:   changes,
		Payments:  payments,
		Now:       time.Now,
		KeepAlive: defaultKeepAlive,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/mentors/{mentorID}/tasks", h.handleList)
		r.Post("/mentors/{mentorID}/tasks", h.handleCreate)
		r.Get("/mentors/{mentorID}/tasks/stream", h.handleStream)
		r.Delete("/tasks/{taskID}", h.handleDelete)
	})
}

// mentorScope resolves the path mentor and rejects callers who may not act on it.
func mentorScope(w http.ResponseWriter, r *http.Request) (string, bool) {
	mentorID := chi.URLParam(r, "mentorID")
	user, _ := middleware.GetUser(r.Context())
	if !user.CanAccessMentor(mentorID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to access this mentor", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return mentorID, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID, ok := mentorScope(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	window := shared.ParseWindow(r, h.Now(), 0, v)
	if v.Reject(w, reqID) {
		return
	}
	tasks, err := h.Tasks.ListByMentor(r.Context(), mentorID, window)
	if err != nil {
		slog.Error("list tasks failed", "mentorId", mentorID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "task_list_failed", "failed to list tasks", reqID)
		return
	}
	api.Success(w, tasks, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID, ok := mentorScope(w, r)
	if !ok {
		return
	}
	user, _ := middleware.GetUser(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	var payload task.Input
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	payload.MentorID = mentorID

	idempotencyKey := r.Header.Get("Idempotency-Key")
	requestHash := middleware.RequestHash(append([]byte(mentorID+"\n"), body...))
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, idempotencyEndpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used for a different request", reqID)
			return
		}
		if err != nil {
			slog.Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Created(w, stored, reqID)
			return
		}
	}

	created, err := h.Tasks.Create(r.Context(), payload)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, audit.ActionTaskCreate, created.ID, nil, created)

	if idempotencyKey != "" && h.Idempotency != nil {
		response, err := json.Marshal(created)
		if err != nil {
			slog.Warn("task response marshal failed", "err", err)
		} else if err := h.Idempotency.Save(r.Context(), user.UserID, idempotencyEndpoint, idempotencyKey, requestHash, response); err != nil {
			slog.Warn("idempotency save failed", "err", err)
		}
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	taskID := chi.URLParam(r, "taskID")
	user, _ := middleware.GetUser(r.Context())

	existing, err := h.Tasks.Get(r.Context(), taskID)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	if !user.CanAccessMentor(existing.MentorID) {
		// Do not reveal tasks owned by other mentors.
		api.Fail(w, http.StatusNotFound, "not_found", "task not found", reqID)
		return
	}
	deleted, err := h.Tasks.Delete(r.Context(), taskID)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, audit.ActionTaskDelete, deleted.ID, deleted, nil)
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

// handleStream pushes a fresh payment breakdown whenever the mentor's tasks change.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID, ok := mentorScope(w, r)
	if !ok {
		return
	}
	v := shared.NewValidator()
	shared.ParseWindow(r, h.Now(), payment.RecentWindowDays, v)
	if v.Reject(w, reqID) {
		return
	}
	if h.Changes == nil || h.Payments == nil {
		api.Fail(w, http.StatusServiceUnavailable, "stream_unavailable", "live updates are not available", reqID)
		return
	}

	ctx := r.Context()
	summary := func() (payment.Statement, error) {
		// The window is re-read so a trailing range keeps moving with the clock.
		return h.Payments.Summary(ctx, mentorID, shared.ParseWindow(r, h.Now(), payment.RecentWindowDays, shared.NewValidator()))
	}
	initial, err := summary()
	switch {
	case errors.Is(err, mentor.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "mentor not found", reqID)
		return
	case err != nil:
		slog.Error("stream summary failed", "mentorId", mentorID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "payment_summary_failed", "failed to compute payment", reqID)
		return
	}

	changes, unsubscribe := h.Changes.Subscribe(mentorID)
	defer unsubscribe()
	defer h.Metrics.StreamOpened()()

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.Warn("clearing stream write deadline failed", "err", err)
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, rc, "breakdown", initial); err != nil {
		return
	}

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-changes:
			if !open {
				return
			}
			// Coalesce a burst of changes into one recompute.
			drain(changes)
			statement, err := summary()
			if err != nil {
				slog.Warn("stream recompute failed", "mentorId", mentorID, "err", err)
				continue
			}
			if err := writeEvent(w, rc, "breakdown", statement); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func drain(changes <-chan task.Change) {
	for {
		select {
		case _, open := <-changes:
			if !open {
				return
			}
		default:
			return
		}
	}
}

func writeEvent(w io.Writer, rc *http.ResponseController, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return rc.Flush()
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	var verr *task.ValidationError
	switch {
	case errors.As(err, &verr):
		shared.FailFields(w, reqID, verr.Fields)
	case errors.Is(err, task.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "task not found", reqID)
	case errors.Is(err, task.ErrMentorNotFound):
		api.Fail(w, http.StatusNotFound, "mentor_not_found", "mentor not found", reqID)
	default:
		slog.Error("task request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "task_error", "task request failed", reqID)
	}
}

func (h *Handler) record(r *http.Request, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, "task", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
