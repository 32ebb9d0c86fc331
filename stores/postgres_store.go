package stores

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zhCaiCode/offsync"
	"github.com/zhCaiCode/offsync/internal/sqlutil"
)

// PostgresStore implements offsync.Store for PostgreSQL databases.
type PostgresStore struct {
	db     *sql.DB
	prefix string
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresPrefix overrides the default table prefix ("offsync").
func WithPostgresPrefix(prefix string) PostgresOption {
	return func(s *PostgresStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewPostgresStore creates a Store backed by PostgreSQL.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	store := &PostgresStore{
		db:     db,
		prefix: "offsync",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Open creates one table per namespace if it does not exist yet.
func (s *PostgresStore) Open(ctx context.Context, namespaces []string) error {
	for _, ns := range namespaces {
		schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id BIGSERIAL PRIMARY KEY,
    priority INTEGER NOT NULL DEFAULT 0,
    attempt_count INTEGER NOT NULL DEFAULT 0,
    sealed BYTEA NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.tableIdent(ns))
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}

// Add inserts a new record row and returns the assigned id.
func (s *PostgresStore) Add(ctx context.Context, namespace string, rec offsync.Record) (int64, error) {
	query := fmt.Sprintf(
		"INSERT INTO %s (priority, attempt_count, sealed) VALUES ($1, $2, $3) RETURNING id",
		s.tableIdent(namespace),
	)
	var id int64
	if err := s.db.QueryRowContext(ctx, query, rec.Priority, rec.AttemptCount, rec.Sealed).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// ScanAll returns every pending record in insertion order.
func (s *PostgresStore) ScanAll(ctx context.Context, namespace string) ([]offsync.Record, error) {
	query := fmt.Sprintf(
		"SELECT id, priority, attempt_count, sealed FROM %s ORDER BY id",
		s.tableIdent(namespace),
	)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) { _ = rows.Close() }(rows)
	return scanRecords(rows)
}

// Delete removes the record. A missing id is a no-op.
func (s *PostgresStore) Delete(ctx context.Context, namespace string, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableIdent(namespace))
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

func (s *PostgresStore) tableIdent(namespace string) string {
	return sqlutil.QuoteIdentifier(sqlutil.TableName(s.prefix, namespace), `"`)
}
