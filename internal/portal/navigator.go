package portal

import (
	"context"
	"sync"

	sessiondomain "github.com/Apurer/adoptionos/internal/domains/session/domain"
	sessionports "github.com/Apurer/adoptionos/internal/domains/session/ports"
)

// Navigator tracks the view a browser is on. Navigations requested by the stores are kept as a
// pending redirect until the next response hands them to the browser.
type Navigator struct {
	mu       sync.Mutex
	current  string
	redirect string
}

var _ sessionports.Navigator = (*Navigator)(nil)

// NewNavigator starts on the home view.
func NewNavigator() *Navigator {
	return &Navigator{current: sessiondomain.HomePath}
}

func (n *Navigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate moves to path and queues a redirect for the browser.
func (n *Navigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
	n.redirect = path
}

// Arrive records a navigation the browser already performed.
func (n *Navigator) Arrive(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
}

// TakeRedirect returns and clears the pending redirect.
func (n *Navigator) TakeRedirect() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	r := n.redirect
	n.redirect = ""
	return r
}
