package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type demoToggle struct {
	Enabled *bool `json:"enabled"`
}

// Put /api/demo
func (s *Server) toggleDemo(c *gin.Context) {
	var body demoToggle
	if err := c.ShouldBindJSON(&body); err != nil || body.Enabled == nil {
		s.fail(c, errBadBody)
		return
	}
	client := clientFrom(c)
	if err := client.Demo.Toggle(c.Request.Context(), *body.Enabled); err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, s.state(c, client))
}

// Delete /api/toast
func (s *Server) hideToast(c *gin.Context) {
	client := clientFrom(c)
	client.UI.HideToast()
	s.respond(c, http.StatusOK, s.state(c, client))
}

// Get /api/admin/ui
func (s *Server) adminUI(c *gin.Context) {
	s.respond(c, http.StatusOK, clientFrom(c).UI.AdminState())
}

type adminUIUpdate struct {
	IsSidebarOpen *bool   `json:"isSidebarOpen"`
	ActiveView    *string `json:"activeView"`
}

// Put /api/admin/ui
func (s *Server) updateAdminUI(c *gin.Context) {
	var body adminUIUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, errBadBody)
		return
	}
	ui := clientFrom(c).UI
	ctx := c.Request.Context()
	if body.ActiveView != nil {
		if _, err := ui.SetActiveView(ctx, *body.ActiveView); err != nil {
			s.fail(c, err)
			return
		}
	}
	if body.IsSidebarOpen != nil {
		ui.SetSidebarOpen(ctx, *body.IsSidebarOpen)
	}
	s.respond(c, http.StatusOK, ui.AdminState())
}

type visitRequest struct {
	Path string `json:"path" binding:"required"`
}

// Post /api/views
// Runs the navigation guard. A guarded path answers with the view to show instead.
func (s *Server) visit(c *gin.Context) {
	var body visitRequest
	if err := c.ShouldBindJSON(&body); err != nil || !strings.HasPrefix(body.Path, "/") {
		s.fail(c, errBadBody)
		return
	}
	client := clientFrom(c)
	dest := client.Visit(c.Request.Context(), body.Path)
	if dest != body.Path {
		c.Header(RedirectHeader, dest)
	}
	s.respond(c, http.StatusOK, gin.H{"path": dest})
}
