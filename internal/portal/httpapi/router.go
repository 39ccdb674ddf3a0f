// Package httpapi exposes the portal clients over a JSON API.
package httpapi

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Apurer/adoptionos/internal/portal"
	apierrors "github.com/Apurer/adoptionos/internal/shared/errors"
)

// Server routes portal requests to the client of the calling browser.
type Server struct {
	registry      *portal.Registry
	responder     *apierrors.Responder
	logger        *slog.Logger
	gatherer      prometheus.Gatherer
	serviceName   string
	secureCookies bool
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGatherer exposes the registry's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithTracing enables otelgin spans under serviceName.
func WithTracing(serviceName string) Option {
	return func(s *Server) {
		s.serviceName = serviceName
	}
}

// WithSecureCookies marks the tab and device cookies Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// NewServer wraps registry.
func NewServer(registry *portal.Registry, opts ...Option) *Server {
	s := &Server{
		registry:  registry,
		responder: newResponder(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if s.serviceName != "" {
		router.Use(otelgin.Middleware(s.serviceName))
	}
	if s.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := router.Group("/api", s.clientMiddleware)

	api.GET("/pets/available", s.listAvailable)
	api.GET("/pets/spotlight", s.spotlight)

	api.GET("/wizards/:form", s.wizardView)
	api.PATCH("/wizards/:form/fields", s.wizardPatch)
	api.POST("/wizards/:form/advance", s.wizardAdvance)
	api.POST("/wizards/:form/retreat", s.wizardRetreat)
	api.POST("/wizards/:form/submit", s.wizardSubmit)
	api.POST("/wizards/:form/reset", s.wizardReset)

	api.GET("/session", s.sessionState)
	api.POST("/session/login", s.login)
	api.POST("/session/logout", s.logout)
	api.PUT("/session/profile", s.updateProfile)
	api.PUT("/selection", s.selectPet)
	api.DELETE("/selection", s.clearSelection)
	api.PUT("/demo", s.toggleDemo)
	api.DELETE("/toast", s.hideToast)
	api.POST("/views", s.visit)

	admin := api.Group("/admin", s.requireAuth)
	admin.GET("/pets", s.listAdmin)
	admin.GET("/pets/adopted", s.listAdopted)
	admin.PUT("/pets/:id", s.updatePet)
	admin.GET("/ui", s.adminUI)
	admin.PUT("/ui", s.updateAdminUI)

	return router
}
