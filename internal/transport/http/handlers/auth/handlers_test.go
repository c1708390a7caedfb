package authhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"mentordash/internal/domain/auth"
	"mentordash/internal/transport/http/middleware"
)

type stubAuth struct {
	loggedOut  bool
	registered []string
}

func (s *stubAuth) Login(_ context.Context, email, password string) (auth.LoginResult, error) {
	if email != "admin@example.com" || password != "ChangeMe123!" {
		return auth.LoginResult{}, auth.ErrInvalidCredentials
	}
	return auth.LoginResult{Token: "tok", ExpiresAt: time.Now().Add(time.Hour), User: auth.User{ID: "u1", Email: email, Role: auth.RoleAdmin}}, nil
}

func (s *stubAuth) Logout(context.Context, *auth.Claims) error {
	s.loggedOut = true
	return nil
}

func (s *stubAuth) Me(_ context.Context, userID string) (auth.User, error) {
	return auth.User{ID: userID, Email: "admin@example.com", Role: auth.RoleAdmin}, nil
}

func (s *stubAuth) Register(_ context.Context, email, _, _ string, _ *string) (string, error) {
	for _, existing := range s.registered {
		if existing == email {
			return "", auth.ErrUserExists
		}
	}
	s.registered = append(s.registered, email)
	return "u2", nil
}

type recordedEvent struct{ action, entityID string }

type stubAudit struct{ events []recordedEvent }

func (s *stubAudit) Record(_ context.Context, _, action, _, entityID, _, _ string, _, _ any) error {
	s.events = append(s.events, recordedEvent{action, entityID})
	return nil
}

func newRouter(h *Handler, claims *auth.Claims) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if claims != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), *claims)))
			})
		})
	}
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	recorder := &stubAudit{}
	router := newRouter(NewHandler(&stubAuth{}, recorder), nil)

	rec := do(t, router, http.MethodPost, "/auth/login", map[string]string{"email": "admin@example.com", "password": "ChangeMe123!"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(recorder.events) != 1 || recorder.events[0].action != "auth.login" {
		t.Fatalf("expected login audit, got %+v", recorder.events)
	}

	rec = do(t, router, http.MethodPost, "/auth/login", map[string]string{"email": "admin@example.com", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/auth/login", map[string]any{"email": "admin@example.com", "mfaCode": "123"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestLogoutAndMeRequireAuth(t *testing.T) {
	svc := &stubAuth{}
	anonymous := newRouter(NewHandler(svc, nil), nil)
	if rec := do(t, anonymous, http.MethodPost, "/auth/logout", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	signedIn := newRouter(NewHandler(svc, nil), &auth.Claims{UserID: "u1", Role: auth.RoleAdmin, SessionID: "s1"})
	if rec := do(t, signedIn, http.MethodGet, "/me", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, signedIn, http.MethodPost, "/auth/logout", nil); rec.Code != http.StatusOK || !svc.loggedOut {
		t.Fatalf("expected logout to revoke session, code=%d", rec.Code)
	}
}

func TestCreateUser(t *testing.T) {
	svc := &stubAuth{}
	admin := newRouter(NewHandler(svc, nil), &auth.Claims{UserID: "u1", Role: auth.RoleAdmin})

	rec := do(t, admin, http.MethodPost, "/users", map[string]any{"email": "m@example.com", "password": "short", "role": "mentor"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	payload := map[string]any{"email": "m@example.com", "password": "long-enough", "role": "mentor", "mentorId": "m1"}
	if rec := do(t, admin, http.MethodPost, "/users", payload); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, admin, http.MethodPost, "/users", payload); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	mentor := newRouter(NewHandler(svc, nil), &auth.Claims{UserID: "u3", Role: auth.RoleMentor, MentorID: "m1"})
	if rec := do(t, mentor, http.MethodPost, "/users", payload); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
