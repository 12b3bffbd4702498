package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/middleware"
	"github.com/webnyman/three-legged-Oauth/internal/interfaces/http/render"
)

// HomeHandler renders the start page.
type HomeHandler struct {
	renderer render.Renderer
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(renderer render.Renderer) *HomeHandler {
	return &HomeHandler{renderer: renderer}
}

// Index renders the login state plus any pending flash message. The flash
// is consumed on render.
// GET /
func (h *HomeHandler) Index(c *gin.Context) {
	data := gin.H{"isLoggedIn": false}

	if sess := middleware.GetSession(c); sess != nil {
		data["isLoggedIn"] = sess.LoggedIn
		if flash := sess.TakeFlash(); flash != nil {
			data["flash"] = flash
		}
	}

	h.renderer.Render(c, http.StatusOK, "home", data)
}
