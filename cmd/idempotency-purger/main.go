package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/pet-crate-sizer/internal/app/api"
	cratespostgres "github.com/Apurer/pet-crate-sizer/internal/domains/crates/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/pet-crate-sizer/internal/platform/postgres"
)

const defaultKeyTTL = 24 * time.Hour

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	db, cleanup := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge idempotency keys")
	}

	ttl := keyTTLFromEnv()
	store := cratespostgres.NewIdempotencyStore(db)
	purged, err := store.PurgeOlderThan(ctx, time.Now().Add(-ttl))
	if err != nil {
		log.Fatalf("failed to purge idempotency keys: %v", err)
	}
	logger.Info("idempotency key purge completed", slog.Int64("purged", purged), slog.Duration("ttl", ttl))
}

func keyTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("IDEMPOTENCY_TTL_HOURS"))
	if raw == "" {
		return defaultKeyTTL
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return defaultKeyTTL
	}
	return time.Duration(hours) * time.Hour
}
