package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/infrastructure/redis"
	"github.com/sakhrdev1-ctrl/Mangsales/pkg/database"
)

// Storage drivers accepted by Open
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// ErrUnknownDriver is returned by Open for an unrecognised driver name
var ErrUnknownDriver = errors.New("unknown storage driver")

// Options selects and configures a backend
type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
	RedisPrefix string
}

// Open connects the backend named by opts.Driver
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Backend, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryBackend(), nil
	case DriverSQLite, "":
		return openSQL(ctx, database.SQLiteConfig(opts.SQLitePath), logger)
	case DriverPostgres:
		return openSQL(ctx, database.PostgresConfig(opts.DatabaseURL), logger)
	case DriverRedis:
		client, err := redis.NewClient(ctx, opts.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(client, opts.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

func openSQL(ctx context.Context, cfg *database.Config, logger *slog.Logger) (Backend, error) {
	pool, err := database.NewConnectionPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	backend, err := NewSQLBackend(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return backend, nil
}
