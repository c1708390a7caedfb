// Package handlertest holds helpers shared by handler tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"mentordash/internal/domain/auth"
	"mentordash/internal/transport/http/middleware"
)

type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

var (
	Admin  = &auth.Claims{UserID: "admin-user", Role: auth.RoleAdmin, SessionID: "s-admin"}
	Mentor = &auth.Claims{UserID: "mentor-user", Role: auth.RoleMentor, MentorID: "m1", SessionID: "s-mentor"}
)

type Registrar interface {
	RegisterRoutes(r chi.Router)
}

// Router mounts h with claims injected as the authenticated caller.
func Router(h Registrar, claims *auth.Claims) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if claims != nil {
		c := *claims
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), c)))
			})
		})
	}
	h.RegisterRoutes(r)
	return r
}

func Do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Decode parses the envelope and, when out is non-nil, its data.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, out any) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}
