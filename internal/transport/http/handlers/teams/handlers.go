package teamshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mentordash/internal/domain/audit"
	"mentordash/internal/domain/auth"
	"mentordash/internal/domain/mentor"
	"mentordash/internal/domain/team"
	"mentordash/internal/transport/http/api"
	"mentordash/internal/transport/http/middleware"
	"mentordash/internal/transport/http/shared"
)

type Store interface {
	List(ctx context.Context) ([]team.Team, error)
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) (team.Team, error)
	Delete(ctx context.Context, name string) (int64, error)
}

type Members interface {
	List(ctx context.Context, team string) ([]mentor.Mentor, error)
}

type Handler struct {
	Teams   Store
	Members Members
	Audit   audit.Recorder
}

func NewHandler(teams Store, members Members, recorder audit.Recorder) *Handler {
	return &Handler{Teams: teams, Members: members, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/teams", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/{team}", h.handleDelete)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Get("/{team}/mentors", h.handleMembers)
	})
}

type createTeamRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	teams, err := h.Teams.List(r.Context())
	if err != nil {
		slog.Error("list teams failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "team_list_failed", "failed to list teams", reqID)
		return
	}
	api.Success(w, teams, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload createTeamRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	created, err := h.Teams.Create(r.Context(), payload.Name)
	switch {
	case errors.Is(err, team.ErrInvalidName):
		shared.FailFields(w, reqID, map[string]string{"name": "is required"})
		return
	case errors.Is(err, team.ErrExists):
		api.Fail(w, http.StatusConflict, "team_exists", "team already exists", reqID)
		return
	case err != nil:
		slog.Error("create team failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "team_create_failed", "failed to create team", reqID)
		return
	}
	h.record(r, audit.ActionTeamCreate, created.Name, map[string]string{"name": created.Name})
	api.Created(w, created, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	name := chi.URLParam(r, "team")
	detached, err := h.Teams.Delete(r.Context(), name)
	switch {
	case errors.Is(err, team.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "team not found", reqID)
		return
	case err != nil:
		slog.Error("delete team failed", "team", name, "err", err)
		api.Fail(w, http.StatusInternalServerError, "team_delete_failed", "failed to delete team", reqID)
		return
	}
	h.record(r, audit.ActionTeamDelete, name, map[string]any{"detachedMentors": detached})
	api.Success(w, map[string]any{"status": "deleted", "detachedMentors": detached}, reqID)
}

func (h *Handler) handleMembers(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	name := chi.URLParam(r, "team")
	exists, err := h.Teams.Exists(r.Context(), name)
	if err != nil {
		slog.Error("team lookup failed", "team", name, "err", err)
		api.Fail(w, http.StatusInternalServerError, "team_lookup_failed", "failed to load team", reqID)
		return
	}
	if !exists {
		api.Fail(w, http.StatusNotFound, "not_found", "team not found", reqID)
		return
	}
	members, err := h.Members.List(r.Context(), name)
	if err != nil {
		slog.Error("team members failed", "team", name, "err", err)
		api.Fail(w, http.StatusInternalServerError, "team_members_failed", "failed to list team members", reqID)
		return
	}
	api.Success(w, members, reqID)
}

func (h *Handler) record(r *http.Request, action, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	if err := h.Audit.Record(r.Context(), user.UserID, action, "team", entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
