package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webnyman/three-legged-Oauth/internal/application/services"
	"github.com/webnyman/three-legged-Oauth/internal/domain/session"
	"github.com/webnyman/three-legged-Oauth/internal/infrastructure/crypto"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/middleware"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/render"
	"github.com/webnyman/three-legged-Oauth/pkg/logger"
)

// UserHandler drives the OAuth session lifecycle: login redirect, callback
// verification, silent renewal, the authenticated views and logout.
type UserHandler struct {
	users    *services.UserService
	sessions *middleware.SessionManager
	nonces   *crypto.TokenGenerator
	renderer render.Renderer
	log      logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(
	users *services.UserService,
	sessions *middleware.SessionManager,
	nonces *crypto.TokenGenerator,
	renderer render.Renderer,
	log logger.Logger,
) *UserHandler {
	return &UserHandler{
		users:    users,
		sessions: sessions,
		nonces:   nonces,
		renderer: renderer,
		log:      log,
	}
}

// Login starts an authorization attempt. A fresh CSRF nonce is generated per
// attempt and parked in the session until the callback consumes it.
// GET /user/login
func (h *UserHandler) Login(c *gin.Context) {
	sess := middleware.GetSession(c)

	state, err := h.nonces.GenerateStateToken()
	if err != nil {
		h.log.Error("failed to generate state nonce",
			logger.Component("user_handler"),
			logger.Error(err),
		)
		sess.SetFlash("error", "Login is unavailable right now, please try again.")
		c.Redirect(http.StatusFound, "/")
		return
	}

	sess.OAuthState = state
	c.Redirect(http.StatusFound, h.users.AuthorizationURL(state))
}

// Callback completes the authorization attempt. The state parameter must
// match the nonce stored at login; the nonce is consumed either way. Any
// failure destroys the session and sends the user back to the start page.
// GET /user/callback
func (h *UserHandler) Callback(c *gin.Context) {
	sess := middleware.GetSession(c)

	expected := sess.OAuthState
	sess.OAuthState = ""

	if expected == "" || c.Query("state") != expected {
		h.log.Warn("oauth state mismatch",
			logger.Component("user_handler"),
			logger.SessionID(sess.ID),
		)
		h.sessions.Destroy(c)
		c.Redirect(http.StatusFound, "/")
		return
	}

	result, err := h.users.ExchangeCode(c.Request.Context(), c.Query("code"))
	if err != nil || result.Status != http.StatusOK {
		if err != nil {
			h.log.Error("code exchange failed",
				logger.Component("user_handler"),
				logger.SessionID(sess.ID),
				logger.Error(err),
			)
		} else {
			h.log.Warn("code exchange rejected",
				logger.Component("user_handler"),
				logger.SessionID(sess.ID),
				logger.Status(result.Status),
			)
		}
		h.sessions.Destroy(c)
		c.Redirect(http.StatusFound, "/")
		return
	}

	sess.SetTokens(result.AccessToken, result.RefreshToken)
	c.Redirect(http.StatusFound, "/user/profile")
}

// RenewAccessToken is the middleware guarding authenticated routes. It
// refreshes the token pair before the guarded action runs; on any failure
// the action never runs and the user lands on the start page with a flash.
func (h *UserHandler) RenewAccessToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.GetSession(c)
		if sess == nil || !sess.LoggedIn {
			if sess != nil {
				sess.SetFlash("error", "You have to log in to view this page.")
			}
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		result, err := h.users.Refresh(c.Request.Context(), sess.RefreshToken)
		if err != nil || result.Status != http.StatusOK {
			if err != nil {
				h.log.Error("token refresh failed",
					logger.Component("user_handler"),
					logger.SessionID(sess.ID),
					logger.Error(err),
				)
			}
			sess.Clear()
			sess.SetFlash("error", "Your session has expired, please log in again.")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		sess.SetTokens(result.AccessToken, result.RefreshToken)
		c.Next()
	}
}

// Profile shows the authenticated user's profile.
// GET /user/profile
func (h *UserHandler) Profile(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !h.checkAuthenticated(c, sess) {
		return
	}

	profile, err := h.users.Profile(c.Request.Context(), sess.AccessToken)
	if err != nil {
		h.failView(c, sess, "failed to fetch profile", err)
		return
	}

	h.renderer.Render(c, http.StatusOK, "profile", gin.H{
		"profile": profile,
	})
}

// Activities shows the user's recent activity feed.
// GET /user/activities
func (h *UserHandler) Activities(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !h.checkAuthenticated(c, sess) {
		return
	}

	activities, err := h.users.Activities(c.Request.Context(), sess.AccessToken)
	if err != nil {
		h.failView(c, sess, "failed to fetch activities", err)
		return
	}

	h.renderer.Render(c, http.StatusOK, "activities", gin.H{
		"activities": activities,
	})
}

// GroupProjects shows the user's groups with their latest project data.
// GET /user/groupprojects
func (h *UserHandler) GroupProjects(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !h.checkAuthenticated(c, sess) {
		return
	}

	groups, err := h.users.GroupProjects(c.Request.Context(), sess.AccessToken)
	if err != nil {
		h.failView(c, sess, "failed to fetch group projects", err)
		return
	}

	h.renderer.Render(c, http.StatusOK, "groupprojects", gin.H{
		"groupProjects": groups,
	})
}

// Logout revokes the access token and ends the session. The session is only
// destroyed when the provider confirms the revocation; the user is sent to
// the start page regardless.
// GET /user/logout
func (h *UserHandler) Logout(c *gin.Context) {
	sess := middleware.GetSession(c)

	status, err := h.users.Revoke(c.Request.Context(), sess.AccessToken)
	if err != nil {
		h.log.Warn("token revocation failed",
			logger.Component("user_handler"),
			logger.SessionID(sess.ID),
			logger.Error(err),
		)
	}
	if err == nil && status == http.StatusOK {
		h.sessions.Destroy(c)
	}
	c.Redirect(http.StatusFound, "/")
}

// checkAuthenticated guards the view handlers when they are reached without
// the renewal middleware: an anonymous session gets a flash and a redirect
// to the start page.
func (h *UserHandler) checkAuthenticated(c *gin.Context, sess *session.Session) bool {
	if sess == nil || !sess.LoggedIn {
		if sess != nil {
			sess.SetFlash("error", "You have to log in to view this page.")
		}
		c.Redirect(http.StatusFound, "/")
		return false
	}
	return true
}

// failView handles an upstream failure on an authenticated view. The user
// never sees the raw upstream response.
func (h *UserHandler) failView(c *gin.Context, sess *session.Session, msg string, err error) {
	h.log.Error(msg,
		logger.Component("user_handler"),
		logger.SessionID(sess.ID),
		logger.Error(err),
	)
	sess.SetFlash("error", "Could not load the requested data, please try again.")
	c.Redirect(http.StatusFound, "/")
}
