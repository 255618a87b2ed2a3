package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Transport is the surface the domain services depend on. *Client implements
// it; tests can substitute their own.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, dest any) error
	Post(ctx context.Context, path string, body, dest any) error
	Upload(ctx context.Context, path string, file FormFile, fields map[string]string, dest any) error
}

// Ensure Client implements Transport at compile time.
var _ Transport = (*Client)(nil)

const (
	defaultUserAgent     = "labelctl/0.1"
	defaultTimeout       = 10 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = time.Second
	maxBodyBytes         = 8 << 20
)

// Paths that never receive the injected token.
var tokenExempt = map[string]bool{
	"/login.php":  true,
	"/health.php": true,
}

// Config is the explicit construction record for a Client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Headers       map[string]string
	UserAgent     string
	// TokenField names the body field the session token is merged into.
	// Empty disables token injection.
	TokenField string
	// Origin, when set, is sent as the Origin header and responses must
	// allow it through Access-Control-Allow-Origin.
	Origin     string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// FormFile is the file part of a multipart upload.
type FormFile struct {
	Field    string
	Filename string
	Reader   io.Reader
}

// Client talks to the label backend API. One Client is shared per app.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	userAgent  string
	headers    http.Header
	tokenField string
	origin     string
	attempts   int
	delay      time.Duration
	logger     zerolog.Logger

	sleep func(context.Context, time.Duration) error
	now   func() time.Time

	mu          sync.RWMutex
	tokenGetter func() string
}

// NewClient builds a Client from cfg, applying defaults for zero values.
func NewClient(cfg Config) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}

	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	delay := cfg.RetryDelay
	if delay < 0 {
		delay = 0
	} else if delay == 0 {
		delay = defaultRetryDelay
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	headers := http.Header{}
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "api").Logger()
	}

	return &Client{
		baseURL:    base,
		http:       httpClient,
		userAgent:  userAgent,
		headers:    headers,
		tokenField: strings.TrimSpace(cfg.TokenField),
		origin:     strings.TrimSpace(cfg.Origin),
		attempts:   attempts,
		delay:      delay,
		logger:     logger,
		sleep:      sleepContext,
		now:        time.Now,
	}, nil
}

// BaseURL returns the API root the client resolves paths against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetTokenGetter registers the callback consulted on authenticated POSTs.
func (c *Client) SetTokenGetter(getter func() string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenGetter = getter
}

func (c *Client) token(path string) string {
	if c.tokenField == "" || tokenExempt[path] {
		return ""
	}
	c.mu.RLock()
	getter := c.tokenGetter
	c.mu.RUnlock()
	if getter == nil {
		return ""
	}
	return strings.TrimSpace(getter())
}

// Get issues a GET with optional query parameters and decodes into dest.
func (c *Client) Get(ctx context.Context, path string, query url.Values, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.send(ctx, http.MethodGet, path, query, nil, "", dest)
}

// Post sends body as JSON, merging the session token when applicable.
func (c *Client) Post(ctx context.Context, path string, body, dest any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, dest)
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, path string, body, dest any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, dest)
}

// Delete sends an optional JSON body.
func (c *Client) Delete(ctx context.Context, path string, body, dest any) error {
	return c.sendJSON(ctx, http.MethodDelete, path, body, dest)
}

// Upload posts a multipart form containing file plus any extra fields.
func (c *Client) Upload(ctx context.Context, path string, file FormFile, fields map[string]string, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if file.Reader == nil {
		return fmt.Errorf("upload requires a file")
	}
	field := file.Field
	if field == "" {
		field = "file"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field: %w", err)
		}
	}
	if token := c.token(path); token != "" {
		if err := writer.WriteField(c.tokenField, token); err != nil {
			return fmt.Errorf("write form field: %w", err)
		}
	}
	part, err := writer.CreateFormFile(field, file.Filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}
	return c.send(ctx, http.MethodPost, path, nil, buf.Bytes(), writer.FormDataContentType(), dest)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var token string
	if method == http.MethodPost {
		token = c.token(path)
	}
	payload, err := encodeBody(body, c.tokenField, token)
	if err != nil {
		return err
	}
	contentType := ""
	if payload != nil {
		contentType = "application/json"
	}
	return c.send(ctx, method, path, nil, payload, contentType, dest)
}

// encodeBody marshals body and merges token into it when body is a JSON
// object (or absent).
func encodeBody(body any, field, token string) ([]byte, error) {
	if body == nil && token == "" {
		return nil, nil
	}
	if body == nil {
		body = map[string]any{}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	if token == "" {
		return raw, nil
	}
	var object map[string]any
	if err := json.Unmarshal(raw, &object); err != nil || object == nil {
		// Arrays and scalars have nowhere to carry the token.
		return raw, nil
	}
	object[field] = token
	merged, err := json.Marshal(object)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return merged, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string, dest any) error {
	path = normalizePath(path)
	var lastErr *Error
	for attempt := 1; ; attempt++ {
		body, apiErr := c.attempt(ctx, method, path, query, payload, contentType, attempt)
		if apiErr == nil {
			return decode(body, dest)
		}
		lastErr = apiErr
		if ctx.Err() != nil || !shouldRetry(apiErr, attempt, c.attempts) {
			return lastErr
		}

		wait := retryDelay(c.delay, attempt-1)
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Str("kind", string(apiErr.Kind)).
			Int("status", apiErr.Status).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("retrying api request")
		if err := c.sleep(ctx, wait); err != nil {
			return lastErr
		}
	}
}

func (c *Client) attempt(ctx context.Context, method, path string, query url.Values, payload []byte, contentType string, attempt int) ([]byte, *Error) {
	reqURL := *c.baseURL
	reqURL.Path = c.baseURL.Path + path
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, classifyTransport(method, path, fmt.Errorf("create request: %w", err), c.now())
	}
	for k, values := range c.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := classifyTransport(method, path, fmt.Errorf("execute request: %w", err), c.now())
		c.logger.Debug().
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Str("reason", string(apiErr.Reason)).
			Err(err).
			Msg("api request failed")
		return nil, apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransport(method, path, fmt.Errorf("read response: %w", err), c.now())
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("attempt", attempt).
		Int("status", resp.StatusCode).
		Dur("duration", c.now().Sub(start)).
		Msg("api request")

	if c.origin != "" {
		allowed := resp.Header.Get("Access-Control-Allow-Origin")
		if allowed != "*" && allowed != c.origin {
			return nil, corsError(method, path, c.origin, allowed, c.now())
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError(method, path, resp.StatusCode, body, c.now())
	}
	return body, nil
}

func decode(body []byte, dest any) error {
	if dest == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrDecode)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
