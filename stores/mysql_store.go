package stores

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zhCaiCode/offsync"
	"github.com/zhCaiCode/offsync/internal/sqlutil"
)

// MySQLStore implements offsync.Store for MySQL databases.
type MySQLStore struct {
	db     *sql.DB
	prefix string
}

// MySQLOption configures a MySQLStore.
type MySQLOption func(*MySQLStore)

// WithMySQLPrefix overrides the default table prefix ("offsync").
func WithMySQLPrefix(prefix string) MySQLOption {
	return func(s *MySQLStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewMySQLStore creates a Store backed by MySQL.
func NewMySQLStore(db *sql.DB, opts ...MySQLOption) *MySQLStore {
	store := &MySQLStore{
		db:     db,
		prefix: "offsync",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Open creates one table per namespace if it does not exist yet.
func (s *MySQLStore) Open(ctx context.Context, namespaces []string) error {
	for _, ns := range namespaces {
		schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
    priority INT NOT NULL DEFAULT 0,
    attempt_count INT NOT NULL DEFAULT 0,
    sealed LONGBLOB NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, s.tableIdent(ns))
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}

// Add inserts a new record row and returns the assigned id.
func (s *MySQLStore) Add(ctx context.Context, namespace string, rec offsync.Record) (int64, error) {
	query := fmt.Sprintf(
		"INSERT INTO %s (priority, attempt_count, sealed) VALUES (?, ?, ?)",
		s.tableIdent(namespace),
	)
	res, err := s.db.ExecContext(ctx, query, rec.Priority, rec.AttemptCount, rec.Sealed)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ScanAll returns every pending record in insertion order.
func (s *MySQLStore) ScanAll(ctx context.Context, namespace string) ([]offsync.Record, error) {
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
func (s *MySQLStore) Delete(ctx context.Context, namespace string, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableIdent(namespace))
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

func (s *MySQLStore) tableIdent(namespace string) string {
	return sqlutil.QuoteIdentifier(sqlutil.TableName(s.prefix, namespace), "`")
}
