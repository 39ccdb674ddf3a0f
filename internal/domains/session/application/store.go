package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Apurer/adoptionos/internal/domains/session/domain"
	"github.com/Apurer/adoptionos/internal/domains/session/ports"
	"github.com/Apurer/adoptionos/internal/platform/storage"
)

// Persisted keys.
const (
	UserKey        = "user"
	TokenKey       = "token"
	SelectedPetKey = "adoption_pet"
)

// Store holds the authenticated identity and the visitor's selected pet for one client.
type Store struct {
	api       ports.AuthAPI
	storage   ports.Storage
	navigator ports.Navigator
	notifier  ports.Notifier
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	identity *domain.Identity
	token    string

	initMu      sync.Mutex
	initialized bool
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

// WithNavigator sets the navigator used for login redirects.
func WithNavigator(n ports.Navigator) Option {
	return func(s *Store) {
		if n != nil {
			s.navigator = n
		}
	}
}

// WithNotifier sets where session-expiry notices go.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore restores the persisted identity and token.
func NewStore(api ports.AuthAPI, store ports.Storage, opts ...Option) *Store {
	s := &Store{
		api:       api,
		storage:   store,
		navigator: ports.NoopNavigator,
		notifier:  ports.NoopNotifier,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.storage == nil {
		s.storage = storage.NewGateway(nil, nil)
	}
	s.restore(context.Background())
	return s
}

func (s *Store) restore(ctx context.Context) {
	var identity domain.Identity
	if s.storage.Read(ctx, storage.ScopeDurable, UserKey, &identity) {
		if identity.IsZero() {
			s.logger.WarnContext(ctx, "discarding empty stored identity")
			s.clearCredentials(ctx)
			return
		}
		s.identity = &identity
	}
	var token string
	if s.storage.Read(ctx, storage.ScopeDurable, TokenKey, &token) {
		s.token = token
	}
}

// Identity returns the current identity.
func (s *Store) Identity() (domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}

// IsAuthenticated reports whether an identity is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Token returns the stored bearer token.
func (s *Store) Token(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// CheckAuth asks the backend who the caller is. A rejection clears the stored identity; a
// transport failure clears it in memory only and is returned.
func (s *Store) CheckAuth(ctx context.Context) error {
	identity, err := s.api.Me(ctx)
	switch {
	case errors.Is(err, ports.ErrUnauthenticated):
		s.setIdentity(ctx, nil)
		return nil
	case err != nil:
		s.logger.WarnContext(ctx, "identity check failed", slog.String("error", err.Error()))
		s.mu.Lock()
		s.identity = nil
		s.mu.Unlock()
		return err
	case identity != nil && !identity.IsZero():
		s.setIdentity(ctx, identity)
	}
	return nil
}

// Login posts the credentials and stores the returned token and identity. When the backend
// answers without an identity the store asks for it.
func (s *Store) Login(ctx context.Context, email, password string) error {
	creds := domain.Credentials{Email: email, Password: password}
	if err := creds.Normalize(); err != nil {
		return mapError(err)
	}
	result, err := s.api.Login(ctx, creds)
	if err != nil {
		s.logger.InfoContext(ctx, "login rejected", slog.String("error", err.Error()))
		return mapError(err)
	}
	if result.Token != "" {
		s.mu.Lock()
		s.token = result.Token
		s.mu.Unlock()
		_ = s.storage.Write(ctx, storage.ScopeDurable, TokenKey, result.Token)
	}
	if result.Identity != nil && !result.Identity.IsZero() {
		s.setIdentity(ctx, result.Identity)
		return nil
	}
	return s.CheckAuth(ctx)
}

// Logout notifies the backend best effort, then always clears local credentials and goes to the
// login view.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.WarnContext(ctx, "logout request failed", slog.String("error", err.Error()))
	}
	s.clearCredentials(ctx)
	s.navigator.Navigate(ctx, domain.LoginPath)
}

// Initialize runs exactly one identity check per store lifetime. Concurrent callers wait for the
// first one to finish.
func (s *Store) Initialize(ctx context.Context) {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.initialized {
		return
	}
	if token, ok := s.Token(ctx); ok && domain.TokenExpired(token, s.now()) {
		exp, _ := domain.TokenExpiry(token)
		s.logger.WarnContext(ctx, "stored bearer token has expired", slog.Time("expired_at", exp))
	}
	_ = s.CheckAuth(ctx)
	s.initialized = true
}

// Initialized reports whether Initialize completed.
func (s *Store) Initialized() bool {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	return s.initialized
}

// UpdateProfile changes the current user's name, email and optionally password.
func (s *Store) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Identity, error) {
	if err := update.Validate(); err != nil {
		return domain.Identity{}, mapError(err)
	}
	identity, err := s.api.UpdateProfile(ctx, update)
	if err != nil {
		return domain.Identity{}, mapError(err)
	}
	if identity != nil {
		s.setIdentity(ctx, identity)
		return *identity, nil
	}
	current, _ := s.Identity()
	return current, nil
}

// SessionExpired reacts to the backend rejecting the stored credentials. On an admin view the
// user is told and fully logged out; elsewhere the identity is dropped silently.
func (s *Store) SessionExpired(ctx context.Context) {
	if !s.IsAuthenticated() {
		return
	}
	path := s.navigator.CurrentPath()
	if !domain.RequiresAuth(path) {
		s.logger.InfoContext(ctx, "dropping stale identity on public view", slog.String("path", path))
		s.clearCredentials(ctx)
		return
	}
	s.logger.InfoContext(ctx, "session expired on admin view", slog.String("path", path))
	s.notifier.ShowToast(ctx, domain.SessionExpiredMessage, "error")
	s.clearCredentials(ctx)
	s.storage.Clear(ctx, storage.ScopeDurable)
	s.navigator.Navigate(ctx, domain.LoginPath)
}

// SelectPet remembers the pet the visitor is applying for, for this session.
func (s *Store) SelectPet(ctx context.Context, pet domain.SelectedPet) error {
	if err := pet.Validate(); err != nil {
		return mapError(err)
	}
	return s.storage.Write(ctx, storage.ScopeSession, SelectedPetKey, pet)
}

// SelectedPet returns the remembered pet.
func (s *Store) SelectedPet(ctx context.Context) (domain.SelectedPet, bool) {
	var pet domain.SelectedPet
	if !s.storage.Read(ctx, storage.ScopeSession, SelectedPetKey, &pet) || pet.ID == "" {
		return domain.SelectedPet{}, false
	}
	return pet, true
}

// ClearSelectedPet forgets the selection.
func (s *Store) ClearSelectedPet(ctx context.Context) {
	s.storage.Remove(ctx, storage.ScopeSession, SelectedPetKey)
}

func (s *Store) setIdentity(ctx context.Context, identity *domain.Identity) {
	s.mu.Lock()
	if identity == nil {
		s.identity = nil
	} else {
		copied := *identity
		s.identity = &copied
	}
	s.mu.Unlock()
	if identity == nil {
		s.storage.Remove(ctx, storage.ScopeDurable, UserKey)
		return
	}
	_ = s.storage.Write(ctx, storage.ScopeDurable, UserKey, identity)
}

func (s *Store) clearCredentials(ctx context.Context) {
	s.mu.Lock()
	s.identity = nil
	s.token = ""
	s.mu.Unlock()
	s.storage.Remove(ctx, storage.ScopeDurable, TokenKey)
	s.storage.Remove(ctx, storage.ScopeDurable, UserKey)
}

var _ ports.Service = (*Store)(nil)
