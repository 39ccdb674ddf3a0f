// Package portal assembles the per-browser state of the adoption portal: storage namespaces, the
// shelter client and every store built on them.
package portal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Apurer/adoptionos/internal/clients/http/shelter"
	formsremote "github.com/Apurer/adoptionos/internal/domains/forms/adapters/remote"
	formsapp "github.com/Apurer/adoptionos/internal/domains/forms/application"
	formsdomain "github.com/Apurer/adoptionos/internal/domains/forms/domain"
	formsports "github.com/Apurer/adoptionos/internal/domains/forms/ports"
	petsobs "github.com/Apurer/adoptionos/internal/domains/pets/adapters/observability"
	petsremote "github.com/Apurer/adoptionos/internal/domains/pets/adapters/remote"
	petsapp "github.com/Apurer/adoptionos/internal/domains/pets/application"
	petsports "github.com/Apurer/adoptionos/internal/domains/pets/ports"
	sessionremote "github.com/Apurer/adoptionos/internal/domains/session/adapters/remote"
	sessionapp "github.com/Apurer/adoptionos/internal/domains/session/application"
	sessiondomain "github.com/Apurer/adoptionos/internal/domains/session/domain"
	uiapp "github.com/Apurer/adoptionos/internal/domains/ui/application"
	"github.com/Apurer/adoptionos/internal/platform/storage"
	storageports "github.com/Apurer/adoptionos/internal/platform/storage/ports"
)

// Recorder receives usage events.
type Recorder interface {
	Record(ctx context.Context, event string, data map[string]any)
}

// Deps are the process-wide collaborators shared by every browser.
type Deps struct {
	APIURL         string
	RequestTimeout time.Duration
	// Session holds tab-scoped values, Durable device-scoped ones. Both are namespaced per browser.
	Session  storageports.Backend
	Durable  storageports.Backend
	Recorder Recorder
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Meter    metric.Meter
}

// Client is everything one browser tab talks to.
type Client struct {
	Tab    string
	Device string

	Storage  *storage.Gateway
	API      *shelter.Client
	Session  *sessionapp.Store
	Pets     petsports.Service
	UI       *uiapp.Store
	Demo     *uiapp.Demo
	Forms    *formsapp.Set
	Nav      *Navigator
	recorder Recorder
	logger   *slog.Logger

	lastSeen atomic.Int64
}

// NewClient builds and restores the stores of one tab.
func NewClient(ctx context.Context, deps Deps, tab, device string) (*Client, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("tab", tab))
	recorder := deps.Recorder
	if recorder == nil {
		recorder = formsports.NoMetrics
	}

	gw := storage.NewGateway(
		storage.Prefixed(deps.Session, "tab:"+tab),
		storage.Prefixed(deps.Durable, "device:"+device),
		storage.WithLogger(logger),
	)
	api, err := shelter.NewClient(deps.APIURL, shelter.WithTimeout(deps.RequestTimeout), shelter.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("shelter client: %w", err)
	}

	nav := NewNavigator()
	ui := uiapp.NewStore(ctx, gw, uiapp.WithLogger(logger))
	session := sessionapp.NewStore(sessionremote.NewAuthAPI(api), gw,
		sessionapp.WithLogger(logger),
		sessionapp.WithNavigator(nav),
		sessionapp.WithNotifier(ui),
	)
	api.SetTokenSource(session)
	api.Use(sessionremote.NewExpiryInterceptor(session))

	petOpts := []petsobs.Option{petsobs.WithLogger(logger)}
	if deps.Tracer != nil {
		petOpts = append(petOpts, petsobs.WithTracer(deps.Tracer))
	}
	if deps.Meter != nil {
		petOpts = append(petOpts, petsobs.WithMeter(deps.Meter))
	}
	pets := petsobs.New(petsapp.NewStore(petsremote.NewCatalog(api), petsapp.WithLogger(logger)), petOpts...)

	demo := uiapp.NewDemo(gw)
	forms, err := formsapp.NewSet(ctx, gw, formsremote.NewSubmitter(api),
		formsapp.WithLogger(logger),
		formsapp.WithMetrics(recorder),
		formsapp.WithDemo(demo),
		formsapp.WithPetSelection(selection{session: session}),
	)
	if err != nil {
		return nil, err
	}

	c := &Client{
		Tab:      tab,
		Device:   device,
		Storage:  gw,
		API:      api,
		Session:  session,
		Pets:     pets,
		UI:       ui,
		Demo:     demo,
		Forms:    forms,
		Nav:      nav,
		recorder: recorder,
		logger:   logger,
	}
	c.Touch(time.Now())
	return c, nil
}

// Touch marks the client as used at now.
func (c *Client) Touch(now time.Time) {
	c.lastSeen.Store(now.UnixNano())
}

// LastSeen is the time of the last request of the tab.
func (c *Client) LastSeen() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

// Visit runs the navigation guard for path and returns the view the browser should show. The
// first visit verifies the stored session with the backend.
func (c *Client) Visit(ctx context.Context, path string) string {
	c.UI.StartLoading()
	defer c.UI.StopLoading()

	if !c.Session.Initialized() {
		c.Session.Initialize(ctx)
	}

	dest := path
	switch {
	case path == sessiondomain.LoginPath && c.Session.IsAuthenticated():
		dest = sessiondomain.AdminPath
	case sessiondomain.RequiresAuth(path) && !c.Session.IsAuthenticated():
		dest = sessiondomain.LoginPath
	}
	if dest != path {
		c.logger.DebugContext(ctx, "navigation redirected", slog.String("from", path), slog.String("to", dest))
	}
	c.Nav.Arrive(dest)
	c.recorder.Record(ctx, "page_view", map[string]any{"path": dest})
	return dest
}

// Close drops the tab-scoped storage of the client.
func (c *Client) Close(ctx context.Context) {
	c.Storage.Clear(ctx, storage.ScopeSession)
}

type selection struct {
	session *sessionapp.Store
}

func (s selection) SelectedPet(ctx context.Context) (formsdomain.PetRef, bool) {
	pet, ok := s.session.SelectedPet(ctx)
	if !ok {
		return formsdomain.PetRef{}, false
	}
	return formsdomain.PetRef{ID: pet.ID, Name: pet.Name}, true
}
