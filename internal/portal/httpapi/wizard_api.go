package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	formsports "github.com/Apurer/adoptionos/internal/domains/forms/ports"
	apierrors "github.com/Apurer/adoptionos/internal/shared/errors"
)

func (s *Server) wizard(c *gin.Context) (formsports.Controller, bool) {
	controller, err := clientFrom(c).Forms.Controller(c.Param("form"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return controller, true
}

// Get /api/wizards/:form
func (s *Server) wizardView(c *gin.Context) {
	w, ok := s.wizard(c)
	if !ok {
		return
	}
	s.respond(c, http.StatusOK, w.View(c.Request.Context()))
}

// Patch /api/wizards/:form/fields
// Merges a partial field object into the form.
func (s *Server) wizardPatch(c *gin.Context) {
	w, ok := s.wizard(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil || len(body) == 0 {
		s.fail(c, errBadBody)
		return
	}
	if err := w.Patch(c.Request.Context(), body); err != nil {
		s.wizardFailed(c, w, err)
		return
	}
	s.respond(c, http.StatusOK, w.View(c.Request.Context()))
}

// Post /api/wizards/:form/advance
func (s *Server) wizardAdvance(c *gin.Context) {
	s.transition(c, formsports.Controller.Advance)
}

// Post /api/wizards/:form/retreat
func (s *Server) wizardRetreat(c *gin.Context) {
	s.transition(c, formsports.Controller.Retreat)
}

// Post /api/wizards/:form/submit
func (s *Server) wizardSubmit(c *gin.Context) {
	s.transition(c, formsports.Controller.Submit)
}

// Post /api/wizards/:form/reset
func (s *Server) wizardReset(c *gin.Context) {
	w, ok := s.wizard(c)
	if !ok {
		return
	}
	w.Reset(c.Request.Context())
	s.respond(c, http.StatusOK, w.View(c.Request.Context()))
}

func (s *Server) transition(c *gin.Context, step func(formsports.Controller, context.Context) error) {
	w, ok := s.wizard(c)
	if !ok {
		return
	}
	if err := step(w, c.Request.Context()); err != nil {
		s.wizardFailed(c, w, err)
		return
	}
	s.respond(c, http.StatusOK, w.View(c.Request.Context()))
}

// wizardFailed attaches the wizard state to the problem so the browser can render the step.
func (s *Server) wizardFailed(c *gin.Context, w formsports.Controller, err error) {
	s.applyRedirect(c)
	problem := s.responder.Problem(err).WithExtension("state", w.View(c.Request.Context()))
	if problem.Status >= http.StatusInternalServerError && problem.Type != apierrors.TypeUpstream {
		s.logger.ErrorContext(c.Request.Context(), "wizard transition failed", slog.String("error", err.Error()))
	}
	s.responder.Respond(c, problem)
}
