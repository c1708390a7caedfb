package authhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mentordash/internal/domain/audit"
	"mentordash/internal/domain/auth"
	"mentordash/internal/transport/http/api"
	"mentordash/internal/transport/http/middleware"
	"mentordash/internal/transport/http/shared"
)

const minPasswordLength = 8

type Service interface {
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Me(ctx context.Context, userID string) (auth.User, error)
	Register(ctx context.Context, email, password, role string, mentorID *string) (string, error)
}

type Handler struct {
	Auth  Service
	Audit audit.Recorder
}

func NewHandler(svc Service, recorder audit.Recorder) *Handler {
	return &Handler{Auth: svc, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.With(middleware.RequireAuth).Post("/auth/logout", h.HandleLogout)
	r.With(middleware.RequireAuth).Get("/me", h.HandleMe)
	r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/users", h.HandleCreateUser)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	MentorID *string `json:"mentorId"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	result, err := h.Auth.Login(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err != nil {
		slog.Error("login failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to sign in", reqID)
		return
	}

	h.record(r, result.User.ID, audit.ActionLogin, "user", result.User.ID, nil)
	api.Success(w, result, reqID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if err := h.Auth.Logout(r.Context(), &user); err != nil {
		slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
	}
	h.record(r, user.UserID, audit.ActionLogout, "user", user.UserID, nil)
	api.Success(w, map[string]string{"status": "logged_out"}, reqID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	me, err := h.Auth.Me(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}
	api.Success(w, me, reqID)
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload createUserRequest
	if err := api.Decode(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	if payload.Email != "" && !strings.Contains(payload.Email, "@") {
		v.Add("email", "must be an email address")
	}
	if len(payload.Password) < minPasswordLength {
		v.Add("password", "must be at least 8 characters")
	}
	v.Required("role", payload.Role, "is required")
	v.Enum("role", payload.Role, []string{auth.RoleAdmin, auth.RoleMentor}, "must be admin or mentor")
	if payload.Role == auth.RoleMentor && (payload.MentorID == nil || strings.TrimSpace(*payload.MentorID) == "") {
		v.Add("mentorId", "is required for mentor logins")
	}
	if v.Reject(w, reqID) {
		return
	}

	id, err := h.Auth.Register(r.Context(), payload.Email, payload.Password, strings.ToLower(payload.Role), payload.MentorID)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		api.Fail(w, http.StatusConflict, "user_exists", "a user with this email already exists", reqID)
		return
	case err != nil:
		slog.Error("create user failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
		return
	}

	actor, _ := middleware.GetUser(r.Context())
	h.record(r, actor.UserID, "user.create", "user", id, map[string]any{"email": payload.Email, "role": payload.Role})
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
