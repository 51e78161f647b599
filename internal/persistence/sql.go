package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakhrdev1-ctrl/Mangsales/pkg/database"
)

const stateTable = "app_state"

// SQLBackend keeps one row per key in a two-column table.
// It works against both PostgreSQL and SQLite.
type SQLBackend struct {
	pool *database.ConnectionPool
	get  string
	set  string
}

// NewSQLBackend creates the state table if needed and prepares the dialect's statements
func NewSQLBackend(ctx context.Context, pool *database.ConnectionPool) (*SQLBackend, error) {
	b := &SQLBackend{pool: pool}

	switch pool.Driver() {
	case database.DriverPostgres:
		b.get = `SELECT payload FROM ` + stateTable + ` WHERE name = $1`
		b.set = `INSERT INTO ` + stateTable + ` (name, payload, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = CURRENT_TIMESTAMP`
	case database.DriverSQLite:
		b.get = `SELECT payload FROM ` + stateTable + ` WHERE name = ?`
		b.set = `INSERT INTO ` + stateTable + ` (name, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", pool.Driver())
	}

	schema := `
		CREATE TABLE IF NOT EXISTS ` + stateTable + ` (
			name       TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := pool.GetDB().ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create %s table: %w", stateTable, err)
	}

	return b, nil
}

func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := b.pool.GetDB().QueryRowContext(ctx, b.get, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(payload), nil
}

func (b *SQLBackend) Set(ctx context.Context, key string, value []byte) error {
	if _, err := b.pool.GetDB().ExecContext(ctx, b.set, key, string(value)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (b *SQLBackend) Ping(ctx context.Context) error {
	return b.pool.Health(ctx)
}

func (b *SQLBackend) Close() error {
	return b.pool.Close()
}
