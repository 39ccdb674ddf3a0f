package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	appportal "github.com/Apurer/adoptionos/internal/app/portal"
	platformpostgres "github.com/Apurer/adoptionos/internal/platform/postgres"
	storagepostgres "github.com/Apurer/adoptionos/internal/platform/storage/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := appportal.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN not set; cannot purge portal sessions")
	}
	db, cleanup, err := platformpostgres.Open(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		log.Fatalf("failed to open postgres: %v", err)
	}
	defer cleanup()

	purged, err := storagepostgres.NewBackend(db, cfg.SessionTTL).PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int64("rows", purged))
}
