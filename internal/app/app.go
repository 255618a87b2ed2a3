package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/five82/labelctl/internal/catalog"
	"github.com/five82/labelctl/internal/config"
	"github.com/five82/labelctl/internal/logging"
	"github.com/five82/labelctl/internal/prefs"
	"github.com/five82/labelctl/internal/ui"
)

// ErrUnhealthy is returned by CheckHealth when the backend answered but is
// not healthy.
var ErrUnhealthy = errors.New("backend unhealthy")

// Options configure the labelctl application.
type Options struct {
	ConfigPath string
	Label      string // empty uses the saved preference, then config
	PrefsPath  string // empty uses default ~/.config/labelctl/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
	HealthOnly bool   // print one health check and exit
	Stdout     io.Writer
}

// Run boots the labelctl TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	label := strings.TrimSpace(opts.Label)
	if label == "" {
		label = userPrefs.Label
	}
	cfg, err := config.Load(opts.ConfigPath, label)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if opts.HealthOnly {
		logger := logging.New(logging.Config{Level: "warn", Format: "text", Output: os.Stderr})
		svc, err := NewServices(cfg, logger)
		if err != nil {
			return err
		}
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		_, err = CheckHealth(ctx, svc.Site, cfg, out)
		return err
	}

	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: "json", Output: logFile})

	svc, err := NewServices(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info().Str("label", cfg.Label).Str("base_url", cfg.BaseURL).Msg("labelctl starting")

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Resolve the cookie session and populate the store before the UI starts.
	svc.Session.Probe(ctx)
	if err := svc.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial refresh failed")
	}

	StartPoller(ctx, svc, interval, logger)

	return ui.Run(ui.Options{
		Context:   ctx,
		Backend:   svc,
		Config:    cfg,
		PollTick:  time.Second,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
	})
}

// CheckHealth runs one health check and prints a summary line to w. A
// backend that answers but is not healthy yields ErrUnhealthy.
func CheckHealth(ctx context.Context, site *catalog.SiteService, cfg config.Config, w io.Writer) (catalog.Health, error) {
	h, err := site.Health(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(w, "%s (%s): unreachable: %v\n", cfg.LabelName, cfg.BaseURL, err)
		return h, err
	}

	db := "disconnected"
	if h.Connected {
		db = fmt.Sprintf("connected %.1fms", h.ResponseMS)
	}
	_, _ = fmt.Fprintf(w, "%s (%s): %s, database %s", cfg.LabelName, cfg.BaseURL, h.Status, db)
	if h.Version != "" {
		_, _ = fmt.Fprintf(w, ", api %s", h.Version)
		if h.Environment != "" {
			_, _ = fmt.Fprintf(w, " (%s)", h.Environment)
		}
	}
	_, _ = fmt.Fprintln(w)

	if !h.Healthy() {
		return h, ErrUnhealthy
	}
	return h, nil
}
