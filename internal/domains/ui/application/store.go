package application

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Apurer/adoptionos/internal/domains/ui/domain"
	"github.com/Apurer/adoptionos/internal/domains/ui/ports"
	"github.com/Apurer/adoptionos/internal/platform/storage"
)

// AdminStateKey is the durable key of the admin preferences.
const AdminStateKey = "admin_ui_state"

// Store holds the presentation state of one client: admin layout, toast and loading indicator.
type Store struct {
	storage ports.Storage
	logger  *slog.Logger

	mu      sync.RWMutex
	admin   domain.AdminState
	toast   domain.Toast
	loading int
}

// Option configures the store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore restores the admin preferences. A blob written under another schema version is removed
// and the defaults are used; other keys are left alone.
func NewStore(ctx context.Context, store ports.Storage, opts ...Option) *Store {
	s := &Store{
		storage: store,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		admin:   domain.DefaultAdminState(),
		toast:   domain.Toast{Type: domain.ToastSuccess},
	}
	for _, opt := range opts {
		opt(s)
	}

	var saved domain.AdminState
	if !store.Read(ctx, storage.ScopeDurable, AdminStateKey, &saved) {
		return s
	}
	if saved.Version != domain.CurrentVersion {
		s.logger.WarnContext(ctx, "admin UI state version mismatch, resetting",
			slog.Int("found", saved.Version), slog.Int("expected", domain.CurrentVersion))
		store.Remove(ctx, storage.ScopeDurable, AdminStateKey)
		return s
	}
	if saved.ActiveView == "" {
		saved.ActiveView = domain.DefaultView
	}
	s.admin = saved
	return s
}

// AdminState returns the admin layout preferences.
func (s *Store) AdminState() domain.AdminState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

// SetSidebarOpen persists the sidebar state.
func (s *Store) SetSidebarOpen(ctx context.Context, open bool) domain.AdminState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin.IsSidebarOpen = open
	s.persist(ctx)
	return s.admin
}

// SetActiveView persists the current admin view.
func (s *Store) SetActiveView(ctx context.Context, view string) (domain.AdminState, error) {
	view, err := domain.NormalizeView(view)
	if err != nil {
		return s.AdminState(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin.ActiveView = view
	s.persist(ctx)
	return s.admin, nil
}

func (s *Store) persist(ctx context.Context) {
	s.admin.Version = domain.CurrentVersion
	if err := s.storage.Write(ctx, storage.ScopeDurable, AdminStateKey, s.admin); err != nil {
		s.logger.WarnContext(ctx, "persist admin UI state", slog.String("error", err.Error()))
	}
}

// ShowToast replaces the current toast.
func (s *Store) ShowToast(_ context.Context, message, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toast = domain.Toast{Show: true, Message: message, Type: domain.ParseToastKind(kind)}
}

// HideToast hides the toast and keeps its last message.
func (s *Store) HideToast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toast.Show = false
}

// Toast returns the current toast.
func (s *Store) Toast() domain.Toast {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toast
}

// StartLoading raises the loading indicator. Calls nest.
func (s *Store) StartLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading++
}

// StopLoading lowers the loading indicator.
func (s *Store) StopLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading > 0 {
		s.loading--
	}
}

// Loading reports whether any operation holds the indicator.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}
