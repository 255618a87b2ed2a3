package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/labelctl/internal/api"
)

// Credentials identify an admin. The backend accepts either an email or a
// username alongside the password.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// LoginResult is the uniform login outcome. Login never returns a Go error;
// every failure mode is Success false with a message.
type LoginResult struct {
	Success bool
	Message string
	Error   string
	User    *User
	Token   string
}

const loginFailedMessage = "Login failed"

// AuthService wraps the session endpoints.
type AuthService struct {
	transport api.Transport
	logger    zerolog.Logger
}

// NewAuthService builds an AuthService over transport.
func NewAuthService(transport api.Transport, logger *zerolog.Logger) *AuthService {
	base := zerolog.Nop()
	if logger != nil {
		base = *logger
	}
	return &AuthService{transport: transport, logger: base.With().Str("component", "auth").Logger()}
}

type loginResponse struct {
	envelope
	User      *rawUser `json:"user"`
	CSRFToken string   `json:"csrfToken"`
	Token     string   `json:"token"`
	DevToken  string   `json:"dev_token"`
}

type userResponse struct {
	envelope
	User          *rawUser  `json:"user"`
	Authenticated *flexBool `json:"authenticated"`
}

// Login posts credentials and interprets the {success, user} response.
func (s *AuthService) Login(ctx context.Context, creds Credentials) LoginResult {
	creds.Email = strings.TrimSpace(creds.Email)
	creds.Username = strings.TrimSpace(creds.Username)
	if (creds.Email == "" && creds.Username == "") || creds.Password == "" {
		return LoginResult{Success: false, Message: "Email and password are required", Error: "Email and password are required"}
	}

	var payload loginResponse
	if err := s.transport.Post(ctx, "/login.php", creds, &payload); err != nil {
		s.logger.Warn().Err(err).Msg("login request failed")
		msg := loginFailedMessage
		if apiErr, ok := api.AsError(err); ok {
			if apiErr.Kind == api.KindHTTP && hasBackendMessage(apiErr.Body) {
				msg = apiErr.Message
			} else if apiErr.Kind != api.KindHTTP {
				msg = networkErrorMessage
			}
		}
		return LoginResult{Success: false, Message: msg, Error: msg}
	}
	if !payload.Success || payload.User == nil {
		msg := firstNonEmpty(payload.Error, payload.Message, loginFailedMessage)
		return LoginResult{Success: false, Message: msg, Error: msg}
	}
	user := normalizeUser(*payload.User)
	s.logger.Info().Str("user", user.DisplayName()).Msg("logged in")
	return LoginResult{
		Success: true,
		Message: firstNonEmpty(payload.Message, "Login successful"),
		User:    &user,
		Token:   firstNonEmpty(payload.CSRFToken, payload.Token, payload.DevToken),
	}
}

// Logout ends the server session.
func (s *AuthService) Logout(ctx context.Context) error {
	var payload envelope
	if err := s.transport.Post(ctx, "/logout.php", nil, &payload); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// CurrentUser probes the cookie session. A nil user with a nil error means
// the backend reported no session.
func (s *AuthService) CurrentUser(ctx context.Context) (*User, error) {
	var payload userResponse
	if err := s.transport.Get(ctx, "/get-user-info.php", nil, &payload); err != nil {
		return nil, fmt.Errorf("probe session: %w", err)
	}
	if !payload.Success || payload.User == nil {
		return nil, nil
	}
	if payload.Authenticated != nil && !bool(*payload.Authenticated) {
		return nil, nil
	}
	user := normalizeUser(*payload.User)
	if user.ID == 0 && user.Username == "" && user.Email == "" {
		return nil, nil
	}
	return &user, nil
}

func hasBackendMessage(body []byte) bool {
	var env envelope
	if json.Unmarshal(body, &env) != nil {
		return false
	}
	return firstNonEmpty(env.Error, env.Message) != ""
}
