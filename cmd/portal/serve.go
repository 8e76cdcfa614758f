package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirpyerre/members-portal/internal/api"
	"github.com/sirpyerre/members-portal/internal/api/session"
	"github.com/sirpyerre/members-portal/internal/infrastructure/security"
	"github.com/sirpyerre/members-portal/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the HTTP server. It stops gracefully on SIGINT or SIGTERM,
finishing in-flight requests before closing the store connections.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect backing services")
		return err
	}
	defer in.Close(context.Background())

	e, err := api.NewRouter(api.Dependencies{
		Log:      log,
		Users:    in.users,
		Sessions: in.sessions,
		Hasher:   security.NewBcryptHasher(cfg.BcryptCost),
		Session: session.Options{
			Secret: cfg.Session.Secret,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.CookieSecure,
		},
		ReadinessChecks: in.checks,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
