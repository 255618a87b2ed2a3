package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/labelctl/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override labelctl config path (optional)")
	label := flag.String("label", "", "label key to manage (optional, defaults to the saved preference)")
	prefsPath := flag.String("prefs", "", "override preferences file path (optional)")
	pollSeconds := flag.Int("poll", 0, "refresh interval in seconds (optional, defaults to the configured interval)")
	health := flag.Bool("health", false, "print one health check and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		Label:      *label,
		PrefsPath:  *prefsPath,
		HealthOnly: *health,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		if errors.Is(err, app.ErrUnhealthy) {
			return 1
		}
		fmt.Fprintf(os.Stderr, "labelctl: %v\n", err)
		return 1
	}
	return 0
}
