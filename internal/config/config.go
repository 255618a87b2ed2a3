package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is everything labelctl needs to reach one label's backend.
type Config struct {
	Label         string
	LabelName     string
	BaseURL       string
	Origin        string
	TokenField    string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Headers       map[string]string
	PollInterval  time.Duration
	LogFile       string
	LogLevel      string
	AdminEmail    string
}

// Profile holds the built-in defaults for a label.
type Profile struct {
	Name       string
	BaseURL    string
	TokenField string
}

// Profiles are the labels labelctl knows about.
var Profiles = map[string]Profile{
	"adedr": {
		Name:    "All Day Every Day Records",
		BaseURL: "https://adedrecords.com/api",
	},
	"nickeldime": {
		Name:       "Nickel & Dime Records",
		BaseURL:    "https://nickelanddimerecords.com/api",
		TokenField: "dev_token",
	},
}

const (
	defaultConfigPath    = "~/.config/labelctl/config.toml"
	defaultLogFile       = "~/.local/state/labelctl/labelctl.log"
	defaultLabel         = "adedr"
	defaultTimeout       = 10 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = time.Second
	defaultPollInterval  = 30 * time.Second
	defaultLogLevel      = "info"

	envPrefix = "LABELCTL_"
)

type fileConfig struct {
	Label        string `toml:"label"`
	PollInterval string `toml:"poll_interval"`
	LogFile      string `toml:"log_file"`
	LogLevel     string `toml:"log_level"`
	AdminEmail   string `toml:"admin_email"`
	API          struct {
		BaseURL       string            `toml:"base_url"`
		Origin        string            `toml:"origin"`
		TokenField    *string           `toml:"token_field"`
		Timeout       string            `toml:"timeout"`
		RetryAttempts int               `toml:"retry_attempts"`
		RetryDelay    string            `toml:"retry_delay"`
		Headers       map[string]string `toml:"headers"`
	} `toml:"api"`
}

// Load reads the TOML config at path (the default location when empty),
// then applies a .env file next to it and LABELCTL_* environment variables.
// label, when non-empty, overrides every other label source. A missing file
// yields the selected profile's defaults.
func Load(path, label string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	data, err := readFile(resolved)
	if err != nil {
		return Config{}, err
	}
	if data != nil {
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	env, err := newEnv(filepath.Join(filepath.Dir(resolved), ".env"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Label: firstNonEmpty(label, env.get("LABEL"), raw.Label, defaultLabel)}
	cfg.Label = strings.ToLower(strings.TrimSpace(cfg.Label))
	profile, ok := Profiles[cfg.Label]
	if !ok {
		return Config{}, fmt.Errorf("unknown label %q (want one of %s)", cfg.Label, strings.Join(LabelNames(), ", "))
	}

	cfg.LabelName = profile.Name
	cfg.BaseURL = firstNonEmpty(env.get("BASE_URL"), raw.API.BaseURL, profile.BaseURL)
	cfg.Origin = firstNonEmpty(env.get("ORIGIN"), raw.API.Origin)
	cfg.TokenField = profile.TokenField
	if raw.API.TokenField != nil {
		cfg.TokenField = strings.TrimSpace(*raw.API.TokenField)
	}
	if v, ok := env.lookup("TOKEN_FIELD"); ok {
		cfg.TokenField = strings.TrimSpace(v)
	}
	cfg.LogFile = mustExpand(firstNonEmpty(env.get("LOG_FILE"), raw.LogFile, defaultLogFile))
	cfg.LogLevel = strings.ToLower(firstNonEmpty(env.get("LOG_LEVEL"), raw.LogLevel, defaultLogLevel))
	cfg.AdminEmail = firstNonEmpty(env.get("ADMIN_EMAIL"), raw.AdminEmail)

	if cfg.Timeout, err = parseDuration("timeout", firstNonEmpty(env.get("TIMEOUT"), raw.API.Timeout), defaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RetryDelay, err = parseDuration("retry_delay", firstNonEmpty(env.get("RETRY_DELAY"), raw.API.RetryDelay), defaultRetryDelay); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", firstNonEmpty(env.get("POLL_INTERVAL"), raw.PollInterval), defaultPollInterval); err != nil {
		return Config{}, err
	}

	cfg.RetryAttempts = raw.API.RetryAttempts
	if v := env.get("RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: retry_attempts %q: %w", v, err)
		}
		cfg.RetryAttempts = n
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}

	cfg.Headers = make(map[string]string, len(raw.API.Headers))
	for k, v := range raw.API.Headers {
		cfg.Headers[k] = v
	}

	return cfg, nil
}

// LabelNames lists the known label keys, sorted.
func LabelNames() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// env resolves LABELCTL_* keys from the process environment first, then the
// .env file.
type env struct {
	dotenv map[string]string
}

func newEnv(path string) (env, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return env{}, nil
		}
		return env{}, fmt.Errorf("read .env: %w", err)
	}
	return env{dotenv: values}, nil
}

func (e env) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		return v, true
	}
	v, ok := e.dotenv[envPrefix+key]
	return v, ok
}

func (e env) get(key string) string {
	v, _ := e.lookup(key)
	return strings.TrimSpace(v)
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return data, nil
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s %q: %w", name, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse config: %s must not be negative", name)
	}
	if d == 0 {
		return fallback, nil
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
