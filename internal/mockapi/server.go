package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	homepageSlots     = 4
	sessionCookie     = "PHPSESSID"
	tokenTTL          = 2 * time.Hour
	defaultAdminEmail = "admin@example.com"
	defaultAdminUser  = "admin"
	apiVersion        = "1.0.0-mock"
)

// Config configures a Server.
type Config struct {
	AdminEmail    string
	AdminUsername string
	AdminPassword string
	// TokenField names the body field writes must carry the csrf token in.
	// Empty accepts writes on the cookie session alone.
	TokenField string
	// AllowOrigins lists origins echoed in Access-Control-Allow-Origin.
	// Empty echoes any origin.
	AllowOrigins []string
	// Secret signs csrf tokens. A random secret is used when empty.
	Secret []byte
	Seed   bool
	Logger *zerolog.Logger
}

// Server is an in-memory implementation of the label backend contract.
type Server struct {
	tokenField   string
	allowOrigins []string
	secret       []byte
	logger       zerolog.Logger
	now          func() time.Time

	mu            sync.RWMutex
	admin         account
	sessions      map[string]userSession
	releases      map[int64]*release
	videos        map[int64]*video
	homepage      [homepageSlots]string
	nextReleaseID int64
	nextVideoID   int64
	unhealthy     bool
}

type userSession struct {
	userID    int64
	loginTime time.Time
}

// New builds a Server. AdminPassword is required.
func New(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		return nil, errors.New("admin password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	secret := cfg.Secret
	if len(secret) == 0 {
		id := uuid.New()
		secret = id[:]
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "mockapi").Logger()
	}

	s := &Server{
		tokenField:   strings.TrimSpace(cfg.TokenField),
		allowOrigins: cfg.AllowOrigins,
		secret:       secret,
		logger:       logger,
		now:          time.Now,
		admin: account{
			ID:       1,
			Username: firstNonEmpty(cfg.AdminUsername, defaultAdminUser),
			Email:    firstNonEmpty(cfg.AdminEmail, defaultAdminEmail),
			Hash:     hash,
			IsAdmin:  true,
		},
		sessions: make(map[string]userSession),
		releases: make(map[int64]*release),
		videos:   make(map[int64]*video),
	}
	if cfg.Seed {
		s.mu.Lock()
		s.seed()
		s.mu.Unlock()
	}
	return s, nil
}

// SetHealthy toggles the /health.php answer.
func (s *Server) SetHealthy(healthy bool) {
	s.mu.Lock()
	s.unhealthy = !healthy
	s.mu.Unlock()
}

// Handler returns the gin engine serving the backend paths.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.cors())

	r.GET("/health.php", s.health)

	r.GET("/get-releases.php", s.getReleases)
	r.GET("/get-releases-by-id.php", s.getRelease)
	r.POST("/upsert-release.php", s.upsertRelease)
	r.POST("/delete-release.php", s.deleteRelease)

	r.GET("/get-videos.php", s.getVideos)
	r.GET("/get-video-by-id.php", s.getVideo)
	r.POST("/upsert-video.php", s.upsertVideo)
	r.POST("/delete-video.php", s.deleteVideo)
	r.GET("/get-homepage-videos.php", s.getHomepageVideos)
	r.POST("/update-homepage-videos.php", s.updateHomepageVideos)

	r.POST("/login.php", s.login)
	r.POST("/logout.php", s.logout)
	r.GET("/get-user-info.php", s.userInfo)

	r.POST("/upload-cover-image.php", s.uploadImage("covers"))
	r.POST("/upload-image.php", s.uploadImage("images"))

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Endpoint not found")
	})
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Next()
		s.logger.Debug().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", s.now().Sub(start)).
			Msg("request")
	}
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.originAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Next()
	}
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.allowOrigins) == 0 {
		return true
	}
	for _, allowed := range s.allowOrigins {
		if strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func ok(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// issueToken signs the csrf token handed out at login.
func (s *Server) issueToken(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprint(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) verifyToken(token string, userID int64) error {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return err
	}
	if !parsed.Valid || claims.Subject != fmt.Sprint(userID) {
		return errors.New("token does not match session")
	}
	return nil
}

// currentSession resolves the session cookie.
func (s *Server) currentSession(c *gin.Context) (userSession, bool) {
	id, err := c.Cookie(sessionCookie)
	if err != nil || id == "" {
		return userSession{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// authorize checks the admin session and, when configured, the csrf token
// found in fields. It writes the failure response itself.
func (s *Server) authorize(c *gin.Context, fields map[string]any) bool {
	sess, ok := s.currentSession(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return false
	}
	if sess.userID != s.admin.ID {
		fail(c, http.StatusForbidden, "Admin access required")
		return false
	}
	if s.tokenField == "" {
		return true
	}
	token, _ := fields[s.tokenField].(string)
	if token == "" {
		fail(c, http.StatusForbidden, "Missing security token")
		return false
	}
	if err := s.verifyToken(token, sess.userID); err != nil {
		s.logger.Debug().Err(err).Msg("csrf token rejected")
		fail(c, http.StatusForbidden, "Invalid security token")
		return false
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
