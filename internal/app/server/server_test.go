package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentordash/internal/platform/config"
)

func testApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>dashboard</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	cfg := config.Config{
		JWTSecret:          "test-secret",
		FrontendDir:        dir,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		StatementWeeks:     8,
		DefaultBaseRate:    10,
		MetricsEnabled:     true,
	}
	return Assemble(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	app := testApp(t)

	rec := get(t, app.Router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(t, app.Router, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	app := testApp(t)
	get(t, app.Router, "/healthz")

	rec := get(t, app.Router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requestsTotal":1`)
}

func TestAPIRequiresAuthentication(t *testing.T) {
	app := testApp(t)

	for _, path := range []string{"/api/v1/mentors", "/api/v1/teams", "/api/v1/me", "/api/v1/mentors/m1/payment"} {
		rec := get(t, app.Router, path)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestSPAFallback(t *testing.T) {
	app := testApp(t)

	rec := get(t, app.Router, "/mentors/42")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "dashboard"))

	rec = get(t, app.Router, "/app.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	rec = get(t, app.Router, "/api/v1/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
