package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webnyman/three-legged-Oauth/config"
	"github.com/webnyman/three-legged-Oauth/internal/application/services"
	"github.com/webnyman/three-legged-Oauth/internal/domain/session"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/crypto"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/httpclient"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/memory"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/handlers"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/middleware"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/render"
	"github.com/webnyman/three-legged-Oauth/pkg/jwt"
	"github.com/webnyman/three-legged-Oauth/pkg/logger"
	"github.com/webnyman/three-legged-Oauth/pkg/registry"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	cfg := &config.Config{
		OAuth: config.OAuthConfig{
			BaseURL:        "http://127.0.0.1:0",
			ClientID:       "client-id",
			ClientSecret:   "client-secret",
			RedirectURI:    "http://localhost/user/callback",
			RequestedScope: "read_user",
			RequestTimeout: time.Second,
		},
		Session: config.SessionConfig{
			Store:      "memory",
			TTL:        time.Hour,
			CookieName: "sid",
		},
		Security: config.SecurityConfig{
			RateLimitEnabled: true,
			RateLimitRPS:     100,
			RateLimitBurst:   200,
		},
	}

	log := logger.Nop()
	store := memory.NewSessionStore(cfg.Session.TTL)
	tokens := jwt.NewManager("test", []byte("test-secret"), cfg.Session.TTL)
	sessions := middleware.NewSessionManager(store, tokens, cfg.Session.CookieName, false, log)
	users := services.NewUserService(&cfg.OAuth, httpclient.New(time.Second), log)
	renderer := render.NewJSONRenderer()

	reg := registry.New()
	register := func(name string, instance any, deps ...string) {
		err := reg.Register(name, func(resolved ...any) (any, error) {
			return instance, nil
		}, registry.Options{Dependencies: deps, Singleton: true})
		require.NoError(t, err)
	}

	register("session_store", session.Store(store))
	register(ComponentSessionManager, sessions, "session_store")
	register(ComponentUserHandler,
		handlers.NewUserHandler(users, sessions, crypto.NewTokenGenerator(), renderer, log))
	register(ComponentHomeHandler, handlers.NewHomeHandler(renderer))
	register(ComponentHealthHandler, handlers.NewHealthHandler(nil))
	reg.Freeze()

	return NewRouter(cfg, reg, log)
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_HomeServed(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "isLoggedIn")
}

func TestRouter_UnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}
