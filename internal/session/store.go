// Package session holds the client-side authentication state.
//
// A Store owns the bearer token, the user decoded from it and the
// loading/error flags of the last auth action. It is created once per
// process and passed explicitly to whatever needs it.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/errors"
	"github.com/felixgeelhaar/rolegate/internal/log"
	"github.com/felixgeelhaar/rolegate/internal/platform"
	"github.com/felixgeelhaar/rolegate/internal/token"
)

// ErrSuperseded is returned by an auth action whose result arrived after a
// newer Login, Register or Logout started. The result is discarded.
var ErrSuperseded = errors.New(errors.ErrCodeSuperseded, "superseded by a newer session change")

// State is a snapshot of the session
type State struct {
	Token           string
	User            *domain.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// Gateway is the subset of the API client the store drives
type Gateway interface {
	Login(ctx context.Context, email, password string) (*platform.TokenResponse, error)
	Register(ctx context.Context, req platform.RegisterRequest) (*platform.TokenResponse, error)
	Logout(ctx context.Context) error
}

// RegisterInput is the data collected by the registration form
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Options configures a Store
type Options struct {
	Gateway Gateway
	Storage Storage
	Logger  *log.Logger

	// Clock returns the current time; defaults to time.Now.
	Clock func() time.Time
}

// record is the persisted subset of State
type record struct {
	Token           string       `json:"token"`
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

func (r record) consistent() bool {
	if r.IsAuthenticated {
		return r.Token != "" && r.User != nil
	}
	return r.Token == "" && r.User == nil
}

// Store is the session state machine
type Store struct {
	mu         sync.Mutex
	state      State
	generation uint64

	gateway Gateway
	storage Storage
	logger  *log.Logger
	now     func() time.Time
}

// New creates a store and rehydrates it from storage.
// A missing, unreadable or inconsistent record yields an empty session.
func New(ctx context.Context, opts Options) *Store {
	s := &Store{
		gateway: opts.Gateway,
		storage: opts.Storage,
		logger:  opts.Logger,
		now:     opts.Clock,
	}
	if s.storage == nil {
		s.storage = NewMemoryStorage()
	}
	if s.logger == nil {
		s.logger = log.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	data, err := s.storage.Load(ctx, StorageKey)
	if err != nil {
		s.logger.WithError(err).Warn("could not load persisted session")
		return
	}
	if len(data) == 0 {
		return
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.WithError(err).Warn("discarding unreadable persisted session")
		return
	}
	if !rec.consistent() {
		s.logger.Warn("discarding inconsistent persisted session",
			"is_authenticated", rec.IsAuthenticated,
			"has_token", rec.Token != "",
			"has_user", rec.User != nil)
		return
	}

	s.state = State{
		Token:           rec.Token,
		User:            rec.User,
		IsAuthenticated: rec.IsAuthenticated,
	}
	if rec.User != nil {
		s.logger.Debug("session restored", "user_id", rec.User.ID, "role", rec.User.Role)
	}
}

// State returns a snapshot of the session.
// An authenticated session whose token has expired or no longer decodes is
// reset and persisted as empty before the snapshot is taken.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsAuthenticated {
		if _, _, err := token.Resolve(s.state.Token, s.now()); err != nil {
			s.logger.WithError(err).Info("session token no longer valid, signing out")
			s.resetLocked(context.Background())
		}
	}

	snapshot := s.state
	if s.state.User != nil {
		user := *s.state.User
		snapshot.User = &user
	}
	return snapshot
}

// Token returns the current bearer token, or "" when signed out
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// ClearError drops the last action's error message
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = ""
}

// Login authenticates with the backend and installs the issued token.
//
// On failure State().Error carries the human-readable reason and the
// existing session is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	gen := s.begin()
	resp, err := s.gateway.Login(ctx, email, password)
	return s.settle(ctx, gen, "login", resp, err)
}

// Register creates an account and installs the issued token
func (s *Store) Register(ctx context.Context, in RegisterInput) error {
	gen := s.begin()
	resp, err := s.gateway.Register(ctx, platform.RegisterRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	})
	return s.settle(ctx, gen, "register", resp, err)
}

// Logout ends the session.
// The backend is told on a best-effort basis, then the local session is
// cleared and persisted. A Login or Register started while the backend call
// was in flight takes precedence and the reset is skipped.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	authenticated := s.state.IsAuthenticated
	s.mu.Unlock()

	if authenticated && s.gateway != nil {
		if err := s.gateway.Logout(ctx); err != nil {
			s.logger.WithError(err).Warn("remote logout failed")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("discarding superseded result", "action", "logout", "generation", gen)
		return
	}
	s.resetLocked(ctx)
	s.state.IsLoading = false
	s.logger.Info("signed out")
}

// begin starts a new generation and marks the store as loading
func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state.IsLoading = true
	s.state.Error = ""
	return s.generation
}

// settle applies the outcome of the action started at generation gen
func (s *Store) settle(ctx context.Context, gen uint64, action string, resp *platform.TokenResponse, err error) error {
	var user *domain.User
	if err == nil {
		user, _, err = token.Resolve(resp.Access, s.now())
		if err != nil {
			err = errors.NewInvalidSessionError(err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("discarding superseded result", "action", action, "generation", gen)
		return ErrSuperseded
	}

	s.state.IsLoading = false
	if err != nil {
		s.state.Error = errors.UserMessage(err)
		s.logger.WithError(err).Info(action+" failed", "error_message", s.state.Error)
		return err
	}

	s.state.Token = resp.Access
	s.state.User = user
	s.state.IsAuthenticated = true
	s.state.Error = ""
	s.persistLocked(ctx)
	s.logger.Info(action+" succeeded", "user_id", user.ID, "role", user.Role)
	return nil
}

func (s *Store) resetLocked(ctx context.Context) {
	s.state.Token = ""
	s.state.User = nil
	s.state.IsAuthenticated = false
	s.state.Error = ""
	s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(record{
		Token:           s.state.Token,
		User:            s.state.User,
		IsAuthenticated: s.state.IsAuthenticated,
	})
	if err != nil {
		s.logger.WithError(err).Warn("could not encode session")
		return
	}
	if err := s.storage.Save(ctx, StorageKey, data); err != nil {
		s.logger.WithError(err).Warn("could not persist session")
	}
}
