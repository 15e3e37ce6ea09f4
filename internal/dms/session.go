package dms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"dms-go/internal/model"
)

// Authenticator is the part of the backend a Session needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context) (*model.User, error)
}

// TokenClaims is what a session token says about itself. The values are
// read without verifying the signature and are for display only.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session holds who is logged in. The token lives in the TokenStore; the
// session only caches the user the backend resolved it to.
type Session struct {
	auth   Authenticator
	tokens TokenStore
	logger Logger

	mu   sync.RWMutex
	user *model.User
}

func NewSession(auth Authenticator, tokens TokenStore, logger Logger) *Session {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Session{auth: auth, tokens: tokens, logger: logger}
}

// Init restores the session from a stored token. A token the backend does
// not accept is cleared and the session stays logged out; only a failing
// token store is reported as an error.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.tokens.Load()
	if err != nil {
		return fmt.Errorf("loading stored token: %w", err)
	}
	if token == "" {
		s.setUser(nil)
		return nil
	}
	if _, err := s.validate(ctx); err != nil {
		s.logger.Warn("stored session rejected", "error", err)
		if cerr := s.tokens.Clear(); cerr != nil {
			return fmt.Errorf("clearing rejected token: %w", cerr)
		}
	}
	return nil
}

func (s *Session) validate(ctx context.Context) (*model.User, error) {
	u, err := s.auth.Me(ctx)
	if err != nil {
		s.setUser(nil)
		return nil, err
	}
	s.setUser(u)
	return u, nil
}

// Login authenticates, stores the token and loads the user it belongs to.
func (s *Session) Login(ctx context.Context, username, password string) (*model.User, error) {
	token, err := s.auth.Login(ctx, username, password)
	if errors.Is(err, ErrUnauthorized) {
		return nil, fmt.Errorf("logging in: %w: %w", ErrInvalidCredentials, err)
	}
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	if err := s.tokens.Save(token); err != nil {
		return nil, fmt.Errorf("storing token: %w", err)
	}
	u, err := s.validate(ctx)
	if err != nil {
		if cerr := s.tokens.Clear(); cerr != nil {
			s.logger.Error("clearing token after failed validation", "error", cerr)
		}
		return nil, fmt.Errorf("validating new session: %w", err)
	}
	s.logger.Info("logged in", "username", u.Username)
	return u, nil
}

// Logout forgets the token and user without contacting the backend.
func (s *Session) Logout() error {
	s.setUser(nil)
	if err := s.tokens.Clear(); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}

// HandleUnauthorized is run by the API client after a 401.
func (s *Session) HandleUnauthorized() {
	s.logger.Warn("session expired")
	s.setUser(nil)
}

// User returns the logged-in user, if any.
func (s *Session) User() (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

// Require returns the logged-in user or ErrLoginRequired.
func (s *Session) Require() (*model.User, error) {
	u, ok := s.User()
	if !ok {
		return nil, ErrLoginRequired
	}
	return u, nil
}

// Claims decodes the stored token's payload.
func (s *Session) Claims() (*TokenClaims, error) {
	token, err := s.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("loading stored token: %w", err)
	}
	if token == "" {
		return nil, ErrLoginRequired
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	var out TokenClaims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return &out, nil
}

// Expired reports whether the claims carry an expiry before now.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

func (s *Session) setUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// IsAuthError reports whether err means the user has to log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrLoginRequired)
}
