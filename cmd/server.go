package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mediagate/core/auth"
	"mediagate/core/catalog"
	"mediagate/core/cleanup"
	"mediagate/core/ingest"
	"mediagate/db"
	"mediagate/logger"
	"mediagate/repository"
	"mediagate/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动HTTP服务器",
	Long:  `启动mediagate的HTTP服务器，提供访问码验证、专辑目录、下载链接和管理接口`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(parent context.Context) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("[Server] closing resources failed", logger.ErrorField(err))
		}
	}()

	if err := db.Migrate(a.db); err != nil {
		return err
	}
	if err := a.store.EnsureBucket(ctx); err != nil {
		return err
	}

	albums := repository.NewAlbumRepository(a.db)
	authSvc := auth.NewService(
		repository.NewAdminRepository(a.db),
		repository.NewUserRepository(a.db),
		auth.NewTokenIssuer(cfg.JWTSecret),
	)

	checks := map[string]server.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"storage": func(ctx context.Context) error {
			_, err := a.store.Authorize(ctx)
			return err
		},
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}

	h := server.NewAPIHandler(
		authSvc,
		ingest.NewService(a.store, albums, a.cache),
		catalog.NewService(albums, repository.NewMovieRepository(a.db), a.store, a.cache),
		cleanup.NewService(albums, a.store, a.cache),
		server.Options{
			MaxUploadMemory: cfg.MaxUploadMemory,
			MaxTracks:       cfg.MaxTracks,
			HealthChecks:    checks,
		},
	)

	return server.Run(ctx, ":"+cfg.Port, server.NewRouter(h))
}
