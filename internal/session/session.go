package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/five82/labelctl/internal/catalog"
)

// Status is the authentication lifecycle state.
type Status int

const (
	// StatusUnknown is the initial state until the first probe finishes.
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Authenticator is the slice of catalog.AuthService a Session needs.
type Authenticator interface {
	Login(ctx context.Context, creds catalog.Credentials) catalog.LoginResult
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*catalog.User, error)
}

// TokenSink receives the session's token getter. *api.Client implements it.
type TokenSink interface {
	SetTokenGetter(getter func() string)
}

var _ Authenticator = (*catalog.AuthService)(nil)

// Snapshot is a copy of the session state.
type Snapshot struct {
	Status Status
	User   *catalog.User
	Error  string
	// HasToken reports whether a usable token is held; the token itself is
	// only handed to the transport.
	HasToken bool
}

// Authenticated is shorthand for Status == StatusAuthenticated.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Session is the process-wide authentication state. One Session exists per
// app instance; it is safe for concurrent use.
type Session struct {
	auth   Authenticator
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	status   Status
	user     *catalog.User
	token    string
	errMsg   string
	onChange func(Snapshot)
}

// New builds a Session and registers its token getter with sink.
func New(auth Authenticator, sink TokenSink, logger *zerolog.Logger) *Session {
	base := zerolog.Nop()
	if logger != nil {
		base = *logger
	}
	s := &Session{
		auth:   auth,
		logger: base.With().Str("component", "session").Logger(),
		now:    time.Now,
		status: StatusUnknown,
	}
	if sink != nil {
		sink.SetTokenGetter(s.Token)
	}
	return s
}

// OnChange registers fn to be called after every state change. fn runs
// outside the session lock.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:   s.status,
		Error:    s.errMsg,
		HasToken: s.usableTokenLocked() != "",
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Token returns the token to inject into authenticated requests. A JWT whose
// exp claim has passed is treated as absent.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usableTokenLocked()
}

func (s *Session) usableTokenLocked() string {
	if s.token == "" {
		return ""
	}
	if tokenExpired(s.token, s.now()) {
		return ""
	}
	return s.token
}

// tokenExpired inspects the exp claim without verifying the signature; the
// server remains the authority. Tokens that are not JWTs never expire here.
func tokenExpired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Probe asks the backend for the current cookie session. Any failure or an
// empty payload leaves the session Anonymous.
func (s *Session) Probe(ctx context.Context) Snapshot {
	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("session probe failed")
	}
	return s.update(func() {
		if err != nil || user == nil {
			s.status = StatusAnonymous
			s.user = nil
			s.token = ""
			return
		}
		s.status = StatusAuthenticated
		s.user = user
	})
}

// Login authenticates with the backend. identifier is treated as an email
// when it contains "@", otherwise as a username.
func (s *Session) Login(ctx context.Context, identifier, password string) catalog.LoginResult {
	creds := catalog.Credentials{Password: password}
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		creds.Email = identifier
	} else {
		creds.Username = identifier
	}

	res := s.auth.Login(ctx, creds)
	s.update(func() {
		if !res.Success {
			if s.status != StatusAuthenticated {
				s.status = StatusAnonymous
			}
			s.errMsg = res.Message
			return
		}
		s.status = StatusAuthenticated
		s.user = res.User
		s.token = res.Token
		s.errMsg = ""
	})
	if res.Success && res.User != nil {
		s.logger.Info().Str("user", res.User.DisplayName()).Bool("token", res.Token != "").Msg("session authenticated")
	} else if !res.Success {
		s.logger.Info().Str("reason", res.Message).Msg("login rejected")
	}
	return res
}

// Logout ends the session. The backend call is best effort; the session is
// Anonymous afterwards regardless.
func (s *Session) Logout(ctx context.Context) Snapshot {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("logout request failed")
	}
	return s.update(func() {
		s.status = StatusAnonymous
		s.user = nil
		s.token = ""
		s.errMsg = ""
	})
}

// ClearError drops the recorded login error without touching auth state.
func (s *Session) ClearError() Snapshot {
	return s.update(func() {
		s.errMsg = ""
	})
}

func (s *Session) update(mutate func()) Snapshot {
	s.mu.Lock()
	mutate()
	snap := s.snapshotLocked()
	notify := s.onChange
	s.mu.Unlock()
	if notify != nil {
		notify(snap)
	}
	return snap
}
