package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/acervohq/acervo-backend/pkg/config"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

type healthyPinger struct{}

func (healthyPinger) Ping(context.Context) error { return nil }

type noopSessions struct{}

func (noopSessions) Create(context.Context, string, string) error { return nil }

func (noopSessions) UserID(context.Context, string) (string, error) { return "", nil }

func (noopSessions) Revoke(context.Context, string) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Session.Secret = "test-secret"
	cfg.Session.Issuer = "acervo-test"
	cfg.Session.ExpirationMinutes = 60
	cfg.Session.CookieName = "session"
	cfg.Upload.Dir = t.TempDir()

	logg := logger.New(logger.Options{ServiceName: "test"})
	return NewRouter(cfg, logg, healthyPinger{}, healthyPinger{}, noopSessions{}, Services{})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", w.Code)
	}
}

func TestRouterHealthReady(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", w.Code)
	}
}

func TestRouterRequiresSessionOnProtectedRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/itens", "/api/v1/dashboard"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401 but got %d", path, w.Code)
		}
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 but got %d", w.Code)
	}
}
