package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webnyman/three-legged-Oauth/internal/domain/session"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/memory"
	"github.com/webnyman/three-legged-Oauth/pkg/jwt"
	"github.com/webnyman/three-legged-Oauth/pkg/logger"
)

func newSessionTestSetup(t *testing.T) (*memory.SessionStore, *jwt.Manager, *SessionManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewSessionStore(time.Hour)
	tokens := jwt.NewManager("test", []byte("test-secret"), time.Hour)
	manager := NewSessionManager(store, tokens, "sid", false, logger.Nop())
	return store, tokens, manager
}

func TestSessionManager_CreatesSessionWithoutCookie(t *testing.T) {
	store, tokens, manager := newSessionTestSetup(t)

	engine := gin.New()
	engine.Use(manager.Handler())

	var seenID string
	engine.GET("/", func(c *gin.Context) {
		sess := GetSession(c)
		require.NotNil(t, sess)
		seenID = sess.ID
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	id, err := tokens.ParseSessionToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, seenID, id)

	// The new session is persisted after the request.
	_, err = store.Get(context.Background(), seenID)
	assert.NoError(t, err)
}

func TestSessionManager_TamperedCookieGetsFreshSession(t *testing.T) {
	store, tokens, manager := newSessionTestSetup(t)

	existing := session.New()
	existing.SetTokens("access", "refresh")
	require.NoError(t, store.Save(context.Background(), existing))

	token, err := tokens.CreateSessionToken(existing.ID)
	require.NoError(t, err)
	tampered := token[:len(token)-4] + "AAAA"

	engine := gin.New()
	engine.Use(manager.Handler())
	engine.GET("/", func(c *gin.Context) {
		sess := GetSession(c)
		require.NotNil(t, sess)
		assert.NotEqual(t, existing.ID, sess.ID)
		assert.False(t, sess.LoggedIn)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: tampered})
	engine.ServeHTTP(httptest.NewRecorder(), req)
}

func TestSessionManager_MutationsPersistAcrossRequests(t *testing.T) {
	store, tokens, manager := newSessionTestSetup(t)

	sess := session.New()
	require.NoError(t, store.Save(context.Background(), sess))
	token, err := tokens.CreateSessionToken(sess.ID)
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(manager.Handler())
	engine.GET("/", func(c *gin.Context) {
		GetSession(c).OAuthState = "pending-nonce"
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	engine.ServeHTTP(httptest.NewRecorder(), req)

	stored, err := store.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending-nonce", stored.OAuthState)
}

func TestSessionManager_DestroyedSessionIsNotResurrected(t *testing.T) {
	store, tokens, manager := newSessionTestSetup(t)

	sess := session.New()
	sess.SetTokens("access", "refresh")
	require.NoError(t, store.Save(context.Background(), sess))
	token, err := tokens.CreateSessionToken(sess.ID)
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(manager.Handler())
	engine.GET("/", func(c *gin.Context) {
		manager.Destroy(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	_, err = store.Get(context.Background(), sess.ID)
	assert.Error(t, err)

	// The cookie is cleared on destroy.
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Empty(t, cookies[len(cookies)-1].Value)
}
