package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webnyman/three-legged-Oauth/internal/domain/session"
	"github.com/webnyman/three-legged-Oauth/internal/observability"
	"github.com/webnyman/three-legged-Oauth/pkg/jwt"
	"github.com/webnyman/three-legged-Oauth/pkg/logger"
)

// ContextKey is a typed key for values stored in the Gin context.
type ContextKey string

const (
	// ContextKeySession is the context key for the request session.
	ContextKeySession ContextKey = "session"

	// contextKeySessionDestroyed marks a session destroyed mid-request so
	// the deferred save does not resurrect it.
	contextKeySessionDestroyed ContextKey = "session_destroyed"
)

// SessionManager loads the request session from the signed cookie before a
// handler runs and saves it back afterwards. Handlers reach the session via
// GetSession and destroy it via Destroy.
type SessionManager struct {
	store      session.Store
	tokens     *jwt.Manager
	cookieName string
	secure     bool
	log        logger.Logger
}

// NewSessionManager creates a new session manager.
func NewSessionManager(
	store session.Store,
	tokens *jwt.Manager,
	cookieName string,
	secure bool,
	log logger.Logger,
) *SessionManager {
	return &SessionManager{
		store:      store,
		tokens:     tokens,
		cookieName: cookieName,
		secure:     secure,
		log:        log,
	}
}

// Handler returns the Gin middleware. Requests without a valid cookie get a
// fresh anonymous session; an invalid or expired cookie is treated the same
// way, never as an error.
func (m *SessionManager) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := m.loadSession(c)
		c.Set(string(ContextKeySession), sess)

		c.Next()

		if c.GetBool(string(contextKeySessionDestroyed)) {
			return
		}
		observability.SessionOperationsTotal.WithLabelValues("save").Inc()
		if err := m.store.Save(c.Request.Context(), sess); err != nil {
			m.log.Error("failed to save session",
				logger.Component("session"),
				logger.SessionID(sess.ID),
				logger.Error(err),
			)
		}
	}
}

func (m *SessionManager) loadSession(c *gin.Context) *session.Session {
	cookie, err := c.Cookie(m.cookieName)
	if err == nil {
		if id, perr := m.tokens.ParseSessionToken(cookie); perr == nil {
			if sess, gerr := m.store.Get(c.Request.Context(), id); gerr == nil {
				observability.SessionOperationsTotal.WithLabelValues("load").Inc()
				return sess
			}
		}
	}

	sess := session.New()
	observability.SessionOperationsTotal.WithLabelValues("create").Inc()
	observability.SessionsActive.Inc()
	m.setCookie(c, sess.ID)
	return sess
}

// Destroy deletes the session from the store and clears the cookie. The
// next request starts anonymous.
func (m *SessionManager) Destroy(c *gin.Context) {
	sess := GetSession(c)
	if sess == nil {
		return
	}

	observability.SessionOperationsTotal.WithLabelValues("delete").Inc()
	observability.SessionsActive.Dec()
	if err := m.store.Delete(c.Request.Context(), sess.ID); err != nil {
		m.log.Error("failed to delete session",
			logger.Component("session"),
			logger.SessionID(sess.ID),
			logger.Error(err),
		)
	}
	c.Set(string(contextKeySessionDestroyed), true)
	m.clearCookie(c)
}

func (m *SessionManager) setCookie(c *gin.Context, sessionID string) {
	token, err := m.tokens.CreateSessionToken(sessionID)
	if err != nil {
		m.log.Error("failed to sign session cookie",
			logger.Component("session"),
			logger.Error(err),
		)
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) clearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetSession retrieves the request session from the Gin context. It is nil
// only when the session middleware did not run.
func GetSession(c *gin.Context) *session.Session {
	if value, exists := c.Get(string(ContextKeySession)); exists {
		if sess, ok := value.(*session.Session); ok {
			return sess
		}
	}
	return nil
}
