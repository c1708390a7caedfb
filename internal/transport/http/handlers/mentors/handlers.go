package mentorshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mentordash/internal/domain/audit"
	"mentordash/internal/domain/auth"
	"mentordash/internal/domain/mentor"
	"mentordash/internal/transport/http/api"
	"mentordash/internal/transport/http/middleware"
	"mentordash/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, team string) ([]mentor.Mentor, error)
	Get(ctx context.Context, id string) (mentor.Mentor, error)
	Create(ctx context.Context, in mentor.Input) (mentor.Mentor, error)
	Update(ctx context.Context, id string, in mentor.Input) (mentor.Mentor, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	Mentors Service
	Audit   audit.Recorder
}

func NewHandler(svc Service, recorder audit.Recorder) *Handler {
	return &Handler{Mentors: svc, Audit: recorder}
}

// RegisterRoutes uses flat patterns so task and payment routes can share the
// /mentors/{mentorID} prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/mentors", h.handleList)
		r.Get("/mentors/{mentorID}", h.handleGet)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Post("/mentors", h.handleCreate)
			r.Put("/mentors/{mentorID}", h.handleUpdate)
			r.Delete("/mentors/{mentorID}", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.IsAdmin() {
		// Mentors only see themselves.
		m, err := h.Mentors.Get(r.Context(), user.MentorID)
		if err != nil {
			api.Success(w, []mentor.Mentor{}, reqID)
			return
		}
		api.Success(w, []mentor.Mentor{m}, reqID)
		return
	}

	mentors, err := h.Mentors.List(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		slog.Error("list mentors failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "mentor_list_failed", "failed to list mentors", reqID)
		return
	}
	api.Success(w, mentors, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID := chi.URLParam(r, "mentorID")
	user, _ := middleware.GetUser(r.Context())
	if !user.CanAccessMentor(mentorID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", reqID)
		return
	}
	m, err := h.Mentors.Get(r.Context(), mentorID)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	api.Success(w, m, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload mentor.Input
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	m, err := h.Mentors.Create(r.Context(), payload)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, audit.ActionMentorCreate, m.ID, nil, m)
	api.Created(w, m, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID := chi.URLParam(r, "mentorID")
	var payload mentor.Input
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	before, err := h.Mentors.Get(r.Context(), mentorID)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	m, err := h.Mentors.Update(r.Context(), mentorID, payload)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, audit.ActionMentorUpdate, m.ID, before, m)
	api.Success(w, m, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	mentorID := chi.URLParam(r, "mentorID")
	if err := h.Mentors.Delete(r.Context(), mentorID); err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, audit.ActionMentorDelete, mentorID, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	var verr *mentor.ValidationError
	switch {
	case errors.As(err, &verr):
		shared.FailFields(w, reqID, verr.Fields)
	case errors.Is(err, mentor.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "mentor not found", reqID)
	case errors.Is(err, mentor.ErrEmailTaken):
		api.Fail(w, http.StatusConflict, "email_taken", "a mentor with this email already exists", reqID)
	case errors.Is(err, mentor.ErrUnknownTeam):
		shared.FailFields(w, reqID, map[string]string{"teams": "contains a team that does not exist"})
	default:
		slog.Error("mentor request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "mentor_error", "mentor request failed", reqID)
	}
}

func (h *Handler) record(r *http.Request, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, "mentor", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
