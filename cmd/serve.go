package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"redmine-planner.com/redmine-planner/internal/cache"
	config "redmine-planner.com/redmine-planner/internal/configs"
	httpapi "redmine-planner.com/redmine-planner/internal/http"
	repository "redmine-planner.com/redmine-planner/internal/repositories"
	"redmine-planner.com/redmine-planner/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the backend API server",
	Long:  "Starts the planner backend: REST API, SQLite storage and the Redmine log worker pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bootstrap()

		database := config.New(cfg.DatabaseDSN)
		taskRepo := repository.NewTaskRepository(database)
		profileRepo := repository.NewProfileRepository(database)
		historyRepo := repository.NewHistoryRepository(database)
		settingsRepo := repository.NewSettingsRepository(database)

		metadata, closeCache := newCache(cfg, "redmine-planner:backend:")
		defer closeCache()

		connector := services.NewConnector(settingsRepo, cfg.HTTPTimeout)
		pool := services.NewPoolService(cfg.Workers, cfg.QueueSize)

		handler := httpapi.NewHandler(
			services.NewTaskService(taskRepo, historyRepo, connector),
			services.NewLogService(taskRepo, connector, pool, metadata),
			services.NewProfileService(profileRepo, historyRepo),
			services.NewRedmineService(connector, metadata, cfg.CacheTTL),
			services.NewSettingsService(settingsRepo, connector),
		)

		e := echo.New()
		e.HideBanner = true
		httpapi.Register(e, handler, cfg.RateLimit)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			log.Infof("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				log.Infof("server stopped: %v", err)
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()

		_ = e.Shutdown(shutdownCtx)
		pool.Shutdown(shutdownCtx)

		log.Info("HTTP server and worker pool shut down gracefully")
		return nil
	},
}

// newCache picks the metadata cache backend. The returned func releases it.
// An unreachable Redis falls back to the in-memory cache.
func newCache(cfg config.Config, prefix string) (cache.Cache, func()) {
	if cfg.CacheBackend != config.CacheBackendRedis {
		return cache.NewMemoryCache(), func() {}
	}

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, using in-memory metadata cache")
		return cache.NewMemoryCache(), func() {}
	}
	log.WithField("addr", cfg.RedisAddr).Info("using redis metadata cache")
	return cache.NewRedisCache(redisClient, prefix), redisClient.Close
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
