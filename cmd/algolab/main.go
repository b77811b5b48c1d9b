package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/seantiz/algolab/internal/algorithm"
	"github.com/seantiz/algolab/internal/api"
	"github.com/seantiz/algolab/internal/config"
	"github.com/seantiz/algolab/internal/engine"
	"github.com/seantiz/algolab/internal/model"
	"github.com/seantiz/algolab/internal/store"
)

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	if envErr == nil {
		logger.Debug("loaded environment from .env")
	}

	logger.Info("algolab: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"cache_enabled", cfg.CacheEnabled,
		"cache_ttl", cfg.CacheTTL.String(),
		"max_cache_size", cfg.MaxCacheSize,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	reg, err := algorithm.Default()
	if err != nil {
		log.Fatalf("failed to build algorithm registry: %v", err)
	}

	eng := engine.New(reg, logger,
		engine.WithCache(cfg.CacheEnabled),
		engine.WithCacheTTL(cfg.CacheTTL),
		engine.WithMaxCacheSize(cfg.MaxCacheSize),
		engine.WithMetrics(cfg.MetricsEnabled),
		engine.WithCoalescing(cfg.Coalesce),
		engine.WithRecorder(func(ctx context.Context, rec model.HistoryRecord) {
			if err := db.InsertExecution(ctx, model.ExecutionFromRecord(rec)); err != nil {
				logger.Error("failed to archive execution", "id", rec.ID, "error", err)
			}
		}),
		engine.WithCompletionHandler(func(path string, _ any, d time.Duration) {
			logger.Debug("execution completed", "algorithm", path, "duration_ms", d.Milliseconds())
		}),
	)

	srv := api.NewServer(cfg.ListenAddr, db, eng, logger, cfg.ExecTimeout)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
