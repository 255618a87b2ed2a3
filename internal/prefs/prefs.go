// Package prefs handles labelctl user preferences persistence.
// Preferences are stored in ~/.config/labelctl/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/listing"
)

// Prefs holds user preferences for labelctl. Label is the last label the
// user browsed; an explicit -label flag still wins over it.
type Prefs struct {
	Theme string `toml:"theme"`
	Label string `toml:"label,omitempty"`
	Sort  string `toml:"sort"`
	Order string `toml:"order"`
}

const (
	defaultPrefsPath = "~/.config/labelctl/prefs.toml"
	defaultTheme     = "Nightfox"
)

// Default returns the preferences used when nothing has been saved yet.
func Default() Prefs {
	filter := listing.DefaultFilter()
	return Prefs{
		Theme: defaultTheme,
		Sort:  string(filter.Sort),
		Order: string(filter.Order),
	}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// ApplyTo copies the saved sort onto a filter, ignoring unknown values.
func (p Prefs) ApplyTo(f listing.FilterState) listing.FilterState {
	if key := catalog.SortKey(p.Sort); key.Valid() {
		f.Sort = key
	}
	if order := catalog.SortOrder(p.Order); order.Valid() {
		f.Order = order
	}
	return f
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	prefs := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default(), nil // Graceful degradation
	}

	defaults := Default()
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaults.Theme
	}
	if !catalog.SortKey(prefs.Sort).Valid() {
		prefs.Sort = defaults.Sort
	}
	if !catalog.SortOrder(prefs.Order).Valid() {
		prefs.Order = defaults.Order
	}
	prefs.Label = strings.ToLower(strings.TrimSpace(prefs.Label))

	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
