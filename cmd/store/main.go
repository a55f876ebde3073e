package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunexus/edunexus-go/internal/config"
	"github.com/edunexus/edunexus-go/internal/database"
	"github.com/edunexus/edunexus-go/internal/observability"
	"github.com/edunexus/edunexus-go/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.AppName).Logger()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	var db *gorm.DB
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err = database.ConnectPostgres(cfg.DatabaseURL)
	default:
		db, err = database.ConnectSQLite(cfg.SQLitePath)
	}
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	observability.RegisterMetrics()
	validate := validator.New(validator.WithRequiredStructEnabled())

	st := store.New(db, validate, logger)

	ctx := context.Background()
	if err := st.Seed.EnsureAdmin(ctx, cfg.AdminContact, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to provision administrator: %v", err)
	}
	if cfg.SeedDemo {
		if err := st.Seed.SeedDemo(ctx); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	logger.Info().
		Str("driver", cfg.DatabaseDriver).
		Str("env", cfg.AppEnv).
		Msg("store ready")

	waitForShutdown(db, logger)
}

func waitForShutdown(db *gorm.DB, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}

	logger.Info().Msg("store stopped")
}
