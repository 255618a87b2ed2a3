package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"LABEL", "BASE_URL", "ORIGIN", "TOKEN_FIELD", "LOG_FILE", "LOG_LEVEL",
	"ADMIN_EMAIL", "TIMEOUT", "RETRY_DELAY", "RETRY_ATTEMPTS", "POLL_INTERVAL",
}

// clearEnv unsets every LABELCTL_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(envPrefix+key, "")
		os.Unsetenv(envPrefix + key)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"), "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Label != defaultLabel {
		t.Fatalf("Label = %q, want %q", cfg.Label, defaultLabel)
	}
	if cfg.BaseURL != Profiles[defaultLabel].BaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.BaseURL, Profiles[defaultLabel].BaseURL)
	}
	if cfg.Timeout != defaultTimeout || cfg.RetryAttempts != defaultRetryAttempts || cfg.RetryDelay != defaultRetryDelay {
		t.Fatalf("transport defaults = %v/%d/%v", cfg.Timeout, cfg.RetryAttempts, cfg.RetryDelay)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Fatalf("PollInterval = %v, want %v", cfg.PollInterval, defaultPollInterval)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.Headers == nil {
		t.Fatal("Headers = nil, want empty map")
	}
}

func TestLoad_LabelSelectsProfile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"), "NickelDime")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Label != "nickeldime" || cfg.LabelName != "Nickel & Dime Records" {
		t.Fatalf("label = %q/%q, want nickeldime profile", cfg.Label, cfg.LabelName)
	}
	if cfg.TokenField != "dev_token" {
		t.Fatalf("TokenField = %q, want dev_token", cfg.TokenField)
	}
}

func TestLoad_UnknownLabelFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "config.toml"), "motown")
	if err == nil {
		t.Fatal("Load returned nil error, want unknown label")
	}
	if !strings.Contains(err.Error(), "adedr, nickeldime") {
		t.Fatalf("Load error = %q, want it to list known labels", err.Error())
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
label = "  nickeldime  "
poll_interval = "1m"
log_file = "  ~/logs/labelctl.log  "
log_level = "DEBUG"
admin_email = "ops@example.com"

[api]
base_url = "  http://localhost:8080/api  "
origin = "http://localhost:5173"
token_field = ""
timeout = "5s"
retry_attempts = 5
retry_delay = "250ms"

[api.headers]
X-Client = "labelctl"
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Label != "nickeldime" {
		t.Fatalf("Label = %q, want nickeldime", cfg.Label)
	}
	if cfg.BaseURL != "http://localhost:8080/api" {
		t.Fatalf("BaseURL = %q, want trimmed override", cfg.BaseURL)
	}
	if cfg.Origin != "http://localhost:5173" {
		t.Fatalf("Origin = %q", cfg.Origin)
	}
	if cfg.TokenField != "" {
		t.Fatalf("TokenField = %q, want explicit empty value to win over the profile", cfg.TokenField)
	}
	if cfg.Timeout != 5*time.Second || cfg.RetryAttempts != 5 || cfg.RetryDelay != 250*time.Millisecond {
		t.Fatalf("transport = %v/%d/%v", cfg.Timeout, cfg.RetryAttempts, cfg.RetryDelay)
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("PollInterval = %v, want 1m", cfg.PollInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFile != filepath.Join(home, "logs/labelctl.log") {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.AdminEmail != "ops@example.com" {
		t.Fatalf("AdminEmail = %q", cfg.AdminEmail)
	}
	if cfg.Headers["X-Client"] != "labelctl" {
		t.Fatalf("Headers = %v, want X-Client", cfg.Headers)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `
label = "adedr"
[api]
base_url = "http://file.example/api"
timeout = "5s"
`)
	writeFile(t, filepath.Join(dir, ".env"), `
LABELCTL_BASE_URL=http://dotenv.example/api
LABELCTL_TIMEOUT=7s
LABELCTL_RETRY_ATTEMPTS=4
`)
	t.Setenv("LABELCTL_TIMEOUT", "9s")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL != "http://dotenv.example/api" {
		t.Fatalf("BaseURL = %q, want .env override", cfg.BaseURL)
	}
	if cfg.Timeout != 9*time.Second {
		t.Fatalf("Timeout = %v, want process env to beat .env", cfg.Timeout)
	}
	if cfg.RetryAttempts != 4 {
		t.Fatalf("RetryAttempts = %d, want 4", cfg.RetryAttempts)
	}
}

func TestLoad_FlagLabelBeatsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LABELCTL_LABEL", "nickeldime")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"), "adedr")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Label != "adedr" {
		t.Fatalf("Label = %q, want flag value adedr", cfg.Label)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "toml", content: `label = [`, want: "parse config"},
		{name: "duration", content: "[api]\ntimeout = \"soon\"", want: "timeout"},
		{name: "negative", content: "poll_interval = \"-1s\"", want: "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeFile(t, path, tt.content)
			_, err := Load(path, "")
			if err == nil {
				t.Fatal("Load returned nil error, want failure")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLabelNames_Sorted(t *testing.T) {
	got := strings.Join(LabelNames(), ",")
	if got != "adedr,nickeldime" {
		t.Fatalf("LabelNames = %q, want adedr,nickeldime", got)
	}
}
