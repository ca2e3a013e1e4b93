package storage

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"anonchat/internal/app/db"
	"anonchat/internal/pkg/limiter"
	"anonchat/internal/pkg/logx"
)

// Backend names a shared store implementation.
type Backend string

const (
	BackendLocal    Backend = "local"
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendS3       Backend = "s3"
	BackendPostgres Backend = "postgres"
)

// Config selects and configures the stores opened by OpenLocal and OpenShared.
type Config struct {
	// LocalPath is the SQLite file of the same-device store.
	LocalPath string

	// Shared is the backend of the shared message store.
	Shared Backend

	Redis       RedisConfig
	S3          S3Config
	DatabaseURL string

	// Rate and Burst bound each operation kind on remote backends.
	Rate  float64
	Burst int

	// Timeout is the deadline of a single remote operation.
	Timeout time.Duration
}

// OpenLocal opens the same-device SQLite store.
func OpenLocal(ctx context.Context, path string) (*SQLStore, error) {
	sqlDB, err := db.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	return NewSQLStore(sqlDB, DialectSQLite, sqlDB.Close)
}

// OpenShared opens the shared store named by cfg.Shared. BackendLocal returns local itself,
// so single-device deployments keep messages next to identity and grants.
func OpenShared(ctx context.Context, cfg Config, local Store) (Store, error) {
	var (
		remote Store
		err    error
	)

	switch cfg.Shared {
	case BackendLocal, "":
		return nopCloser{local}, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		remote, err = NewRedisStore(ctx, cfg.Redis)
	case BackendS3:
		remote, err = NewS3Store(ctx, cfg.S3)
	case BackendPostgres:
		var pg *db.Postgres
		pg, err = db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err == nil {
			remote, err = NewSQLStore(pg.DB, DialectPostgres, pg.Close)
		}
	default:
		return nil, fmt.Errorf("unknown shared store backend %q", cfg.Shared)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Shared, err)
	}

	logx.Info("Shared store opened", "backend", string(cfg.Shared), "rate", cfg.Rate, "burst", cfg.Burst)

	limits := limiter.NewKeyedLimiter(rate.Limit(cfg.Rate), cfg.Burst, limiter.DefaultCleanupInterval)
	return NewThrottled(remote, limits, cfg.Timeout), nil
}

// nopCloser shares a store without taking ownership of it.
type nopCloser struct {
	Store
}

func (nopCloser) Close() error { return nil }
