package httpapi

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/Apurer/adoptionos/internal/portal"
)

// Cookie names identifying the browser tab and device.
const (
	TabCookie    = "aos_tab"
	DeviceCookie = "aos_device"

	// RedirectHeader carries a navigation the browser should perform.
	RedirectHeader = "X-Portal-Redirect"

	deviceCookieMaxAge = 365 * 24 * 60 * 60
	clientKey          = "portal.client"
)

func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// clientMiddleware resolves the portal client from the tab and device cookies, issuing new ids
// to browsers that have none.
func (s *Server) clientMiddleware(c *gin.Context) {
	tab, _ := c.Cookie(TabCookie)
	if tab == "" {
		tab = newID()
		http.SetCookie(c.Writer, &http.Cookie{
			Name: TabCookie, Value: tab, Path: "/",
			HttpOnly: true, SameSite: http.SameSiteLaxMode, Secure: s.secureCookies,
		})
	}
	device, _ := c.Cookie(DeviceCookie)
	if device == "" {
		device = newID()
		http.SetCookie(c.Writer, &http.Cookie{
			Name: DeviceCookie, Value: device, Path: "/", MaxAge: deviceCookieMaxAge,
			HttpOnly: true, SameSite: http.SameSiteLaxMode, Secure: s.secureCookies,
		})
	}

	client, err := s.registry.Client(c.Request.Context(), tab, device)
	if err != nil {
		s.responder.RespondError(c, err)
		return
	}
	c.Set(clientKey, client)
	c.Next()
}

// requireAuth rejects admin API calls from tabs without an identity.
func (s *Server) requireAuth(c *gin.Context) {
	if !clientFrom(c).Session.IsAuthenticated() {
		s.fail(c, errNotSignedIn)
		return
	}
	c.Next()
}

func clientFrom(c *gin.Context) *portal.Client {
	return c.MustGet(clientKey).(*portal.Client)
}

// respond writes body after handing over any pending navigation.
func (s *Server) respond(c *gin.Context, status int, body any) {
	s.applyRedirect(c)
	c.JSON(status, body)
}

func (s *Server) fail(c *gin.Context, err error) {
	s.applyRedirect(c)
	problem := s.responder.Problem(err)
	if problem.Status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "portal request failed",
			slog.String("route", c.FullPath()), slog.String("error", err.Error()))
	}
	s.responder.Respond(c, problem)
}

func (s *Server) applyRedirect(c *gin.Context) {
	v, ok := c.Get(clientKey)
	if !ok {
		return
	}
	if path := v.(*portal.Client).Nav.TakeRedirect(); path != "" {
		c.Header(RedirectHeader, path)
	}
}
