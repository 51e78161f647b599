// Package persistence mirrors whole rosters into a key-value backend.
// Reads fall back to a caller-supplied default and writes never fail the caller:
// the in-memory state stays authoritative for the running process.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sakhrdev1-ctrl/Mangsales/internal/observability/metrics"
)

// Fixed collection keys
const (
	UsersKey  = "sales_tracker_users"
	VisitsKey = "sales_tracker_visits"
)

// ErrNotFound is returned by backends when a key has never been written
var ErrNotFound = errors.New("key not found")

// Backend stores opaque values under string keys
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Adapter serializes values as JSON into a Backend
type Adapter struct {
	backend Backend
	logger  *slog.Logger
	timeout time.Duration
}

// NewAdapter creates a persistence adapter over backend
func NewAdapter(backend Backend, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		backend: backend,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// Backend returns the underlying backend
func (a *Adapter) Backend() Backend {
	return a.backend
}

// Load returns the value stored under key, or def when nothing usable is stored.
// A missing key is initialised with def; a corrupt or unreadable value is logged and left as is.
func Load[T any](ctx context.Context, a *Adapter, key string, def T) T {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		a.logger.Info("initialising empty key with defaults", slog.String("key", key))
		a.Save(ctx, key, def)
		return def
	}
	if err != nil {
		metrics.ObservePersistenceFailure("load")
		a.logger.Error("failed to read key",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return def
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.ObservePersistenceFailure("decode")
		a.logger.Error("stored value is corrupt, using defaults",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return def
	}
	return out
}

// Save writes value under key. Failures are logged and swallowed.
func (a *Adapter) Save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		metrics.ObservePersistenceFailure("encode")
		a.logger.Error("failed to encode value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.backend.Set(ctx, key, data); err != nil {
		metrics.ObservePersistenceFailure("save")
		a.logger.Error("failed to save value",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	a.logger.Debug("value saved", slog.String("key", key), slog.Int("bytes", len(data)))
}
