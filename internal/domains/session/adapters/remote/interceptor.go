package remote

import (
	"context"
	"net/http"

	"github.com/Apurer/adoptionos/internal/clients/http/shelter"
	"github.com/Apurer/adoptionos/internal/domains/session/domain"
)

// ExpiryHandler is notified when the backend stops accepting the session.
type ExpiryHandler interface {
	IsAuthenticated() bool
	SessionExpired(ctx context.Context)
}

// ExpiryInterceptor turns 401 responses into session-expiry reactions. Login and logout 401s are
// ignored, as is any 401 received while no identity is held.
type ExpiryInterceptor struct {
	handler ExpiryHandler
}

var _ shelter.ResponseInterceptor = (*ExpiryInterceptor)(nil)

// NewExpiryInterceptor wraps handler.
func NewExpiryInterceptor(handler ExpiryHandler) *ExpiryInterceptor {
	return &ExpiryInterceptor{handler: handler}
}

func (i *ExpiryInterceptor) InterceptResponse(ctx context.Context, req shelter.Request, resp *shelter.Response) {
	if i == nil || i.handler == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return
	}
	if domain.IsAuthEndpoint(req.Path) || !i.handler.IsAuthenticated() {
		return
	}
	i.handler.SessionExpired(ctx)
}
