package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/five82/labelctl/internal/logging"
	"github.com/five82/labelctl/internal/mockapi"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", "127.0.0.1:8088", "listen address")
	adminEmail := flag.String("admin-email", "", "admin login email (optional, defaults to admin@example.com)")
	adminPassword := flag.String("admin-password", os.Getenv("LABELMOCK_ADMIN_PASSWORD"), "admin password (or LABELMOCK_ADMIN_PASSWORD)")
	tokenField := flag.String("token-field", "", "body field writes must carry the csrf token in (optional)")
	origins := flag.String("origins", "", "comma-separated allowed origins (optional, defaults to any)")
	seed := flag.Bool("seed", true, "load sample releases and videos")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := logging.New(logging.Config{Level: *logLevel, Format: "text", Output: os.Stderr})
	gin.SetMode(gin.ReleaseMode)

	var allow []string
	for _, o := range strings.Split(*origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allow = append(allow, o)
		}
	}

	srv, err := mockapi.New(mockapi.Config{
		AdminEmail:    *adminEmail,
		AdminPassword: *adminPassword,
		TokenField:    *tokenField,
		AllowOrigins:  allow,
		Seed:          *seed,
		Logger:        &logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "labelmock: %v\n", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", *addr).Bool("seed", *seed).Msg("labelmock listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server failed")
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
			return 1
		}
		logger.Info().Msg("labelmock stopped")
	}
	return 0
}
