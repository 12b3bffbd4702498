// Package render decouples handlers from the response representation. The
// default renderer emits JSON view payloads; a server-side template renderer
// can be swapped in without touching the handlers.
package render

import (
	"github.com/gin-gonic/gin"
)

// Renderer turns normalized view data into an HTTP response.
type Renderer interface {
	Render(c *gin.Context, status int, view string, data gin.H)
}

// JSONRenderer renders every view as a JSON document tagged with the view
// name.
type JSONRenderer struct{}

// NewJSONRenderer creates the default renderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render writes the view payload as JSON.
func (r *JSONRenderer) Render(c *gin.Context, status int, view string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["view"] = view
	c.JSON(status, data)
}
