package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hamed0406/announcer/internal/catalog"
	"github.com/hamed0406/announcer/internal/config"
	"github.com/hamed0406/announcer/internal/engine"
	"github.com/hamed0406/announcer/internal/httpapi"
	"github.com/hamed0406/announcer/internal/logging"
	"github.com/hamed0406/announcer/internal/metrics"
	"github.com/hamed0406/announcer/internal/repo"
	"github.com/hamed0406/announcer/internal/repo/memory"
	"github.com/hamed0406/announcer/internal/repo/postgres"
	"github.com/hamed0406/announcer/internal/repo/sqlite"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, logging.WithLevel(cfg.LogLevel), logging.WithConsole(cfg.LogConsole))
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV := openKV(ctx, cfg, logger)
	defer closeKV()

	var src catalog.Source
	if cfg.CatalogURL != "" {
		src = catalog.NewHTTPSource(cfg.CatalogURL, cfg.CatalogTimeoutDuration(), logger)
		logger.Info("catalog_source", zap.String("url", cfg.CatalogURL))
	} else {
		src = catalog.NewFileSource(cfg.CatalogPath, logger)
		logger.Info("catalog_source", zap.String("path", cfg.CatalogPath))
	}

	loc := cfg.Location()
	api := httpapi.NewServer(logger, kv, src, engine.New(loc))
	api.Metrics = metrics.New(prometheus.DefaultRegisterer)
	if cfg.CatalogURL == "" {
		api.CatalogFile = cfg.CatalogPath
	}
	if cfg.PagePath != "" {
		page, err := os.ReadFile(cfg.PagePath)
		if err != nil {
			logger.Fatal("page_read_failed", zap.String("path", cfg.PagePath), zap.Error(err))
		}
		api.Page = page
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.Router(httpapi.Options{
			AdminKeys:      cfg.AdminAPIKeys,
			AllowedOrigins: cfg.AllowedOrigins,
			DismissRPM:     cfg.DismissRPM,
			DismissBurst:   cfg.DismissBurst,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.String("timezone", loc.String()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen_failed", zap.Error(err))
	}
	logger.Info("api_stopped")
}

// openKV picks Postgres, then SQLite, then memory.
func openKV(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.KV, func()) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("postgres_connect_failed", zap.Error(err))
		}
		logger.Info("store", zap.String("kind", "postgres"))
		return pg, pg.Close
	case cfg.SQLitePath != "":
		lite, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("sqlite_open_failed", zap.String("path", cfg.SQLitePath), zap.Error(err))
		}
		logger.Info("store", zap.String("kind", "sqlite"), zap.String("path", cfg.SQLitePath))
		return lite, func() { _ = lite.Close() }
	default:
		logger.Info("store", zap.String("kind", "memory"))
		return memory.New(), func() {}
	}
}
