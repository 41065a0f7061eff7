package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ispoms/oms-console/internal/api"
	"github.com/ispoms/oms-console/internal/core/ports"
	"github.com/ispoms/oms-console/internal/core/service"
	"github.com/ispoms/oms-console/internal/infrastructure/authclient"
	"github.com/ispoms/oms-console/internal/infrastructure/config"
	"github.com/ispoms/oms-console/internal/infrastructure/rolecatalog"
	"github.com/ispoms/oms-console/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the console HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

// @title        ISP OMS Console API
// @version      1.0
// @description  Console session, route guard and bundled identity directory.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := b.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing backends")
		}
	}()

	var directory ports.DirectoryService
	if cfg.Directory.Enabled {
		roles, err := rolecatalog.Load(cfg.Directory.RoleCatalogPath)
		if err != nil {
			return err
		}
		directory = service.NewDirectoryService(b.accounts, b.verification, roles, service.DirectoryConfig{
			JWTSecret:       cfg.Directory.JWTSecret,
			FederatedSecret: cfg.Directory.FederatedSecret,
			TokenTTL:        cfg.Directory.TokenTTL,
			VerificationTTL: cfg.Directory.VerificationTTL,
		}, log.With().Str("component", "directory").Logger())
	}

	verifier := authclient.New(cfg.Session.AuthEndpoint, &http.Client{})
	sessions := service.NewSessions(verifier, b.persistence, log.With().Str("component", "session").Logger(),
		service.WithLoginTimeout(cfg.Session.LoginTimeout))
	if cfg.Session.IdleEviction > 0 {
		sessions.StartSweeper(ctx, sweepInterval, cfg.Session.IdleEviction)
	}

	e := api.NewRouter(api.Deps{
		Sessions:     sessions,
		Directory:    directory,
		JWTSecret:    cfg.Directory.JWTSecret,
		CookieSecure: cfg.Session.CookieSecure,
		Mongo:        b.mongo,
		Redis:        b.redis,
		Log:          log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("auth_endpoint", cfg.Session.AuthEndpoint).
			Bool("directory", cfg.Directory.Enabled).
			Msg("console listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func initLogger(cfg *config.Config) zerolog.Logger {
	return logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "oms-console",
	})
}
