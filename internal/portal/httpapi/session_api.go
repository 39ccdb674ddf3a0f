package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sessiondomain "github.com/Apurer/adoptionos/internal/domains/session/domain"
	uidomain "github.com/Apurer/adoptionos/internal/domains/ui/domain"
	"github.com/Apurer/adoptionos/internal/portal"
)

type sessionState struct {
	Authenticated bool                       `json:"authenticated"`
	Initialized   bool                       `json:"initialized"`
	Identity      *sessiondomain.Identity    `json:"identity"`
	SelectedPet   *sessiondomain.SelectedPet `json:"selectedPet"`
	Demo          bool                       `json:"demo"`
	Loading       bool                       `json:"loading"`
	Toast         uidomain.Toast             `json:"toast"`
	Path          string                     `json:"path"`
}

func (s *Server) state(c *gin.Context, client *portal.Client) sessionState {
	ctx := c.Request.Context()
	st := sessionState{
		Authenticated: client.Session.IsAuthenticated(),
		Initialized:   client.Session.Initialized(),
		Demo:          client.Demo.Enabled(ctx),
		Loading:       client.UI.Loading(),
		Toast:         client.UI.Toast(),
		Path:          client.Nav.CurrentPath(),
	}
	if identity, ok := client.Session.Identity(); ok {
		st.Identity = &identity
	}
	if pet, ok := client.Session.SelectedPet(ctx); ok {
		st.SelectedPet = &pet
	}
	return st
}

// Get /api/session
func (s *Server) sessionState(c *gin.Context) {
	client := clientFrom(c)
	s.respond(c, http.StatusOK, s.state(c, client))
}

// Post /api/session/login
// On success the browser is sent to the admin area.
func (s *Server) login(c *gin.Context) {
	var creds sessiondomain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		s.fail(c, errBadBody)
		return
	}
	client := clientFrom(c)
	ctx := c.Request.Context()
	if err := client.Session.Login(ctx, creds.Email, creds.Password); err != nil {
		s.fail(c, err)
		return
	}
	client.Nav.Navigate(ctx, sessiondomain.AdminPath)
	s.respond(c, http.StatusOK, s.state(c, client))
}

// Post /api/session/logout
func (s *Server) logout(c *gin.Context) {
	client := clientFrom(c)
	client.Session.Logout(c.Request.Context())
	s.respond(c, http.StatusOK, s.state(c, client))
}

// Put /api/session/profile
func (s *Server) updateProfile(c *gin.Context) {
	var update sessiondomain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		s.fail(c, errBadBody)
		return
	}
	identity, err := clientFrom(c).Session.UpdateProfile(c.Request.Context(), update)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, gin.H{"data": identity})
}

// Put /api/selection
func (s *Server) selectPet(c *gin.Context) {
	var pet sessiondomain.SelectedPet
	if err := c.ShouldBindJSON(&pet); err != nil {
		s.fail(c, errBadBody)
		return
	}
	client := clientFrom(c)
	if err := client.Session.SelectPet(c.Request.Context(), pet); err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, http.StatusOK, s.state(c, client))
}

// Delete /api/selection
func (s *Server) clearSelection(c *gin.Context) {
	client := clientFrom(c)
	client.Session.ClearSelectedPet(c.Request.Context())
	s.respond(c, http.StatusOK, s.state(c, client))
}
