// Package stores contains Store implementations for the engine: SQLite,
// MySQL and Postgres over database/sql, and an embedded BadgerDB store.
package stores

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zhCaiCode/offsync"
	"github.com/zhCaiCode/offsync/internal/sqlutil"
)

// SQLiteStore implements offsync.Store for SQLite databases.
type SQLiteStore struct {
	db     *sql.DB
	prefix string
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLitePrefix overrides the default table prefix ("offsync").
func WithSQLitePrefix(prefix string) SQLiteOption {
	return func(s *SQLiteStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewSQLiteStore creates a Store backed by SQLite.
func NewSQLiteStore(db *sql.DB, opts ...SQLiteOption) *SQLiteStore {
	store := &SQLiteStore{
		db:     db,
		prefix: "offsync",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Open creates one table per namespace if it does not exist yet.
func (s *SQLiteStore) Open(ctx context.Context, namespaces []string) error {
	for _, ns := range namespaces {
		schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    priority INTEGER NOT NULL DEFAULT 0,
    attempt_count INTEGER NOT NULL DEFAULT 0,
    sealed BLOB NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, s.tableIdent(ns))
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}

// Add inserts a new record row and returns the assigned id.
func (s *SQLiteStore) Add(ctx context.Context, namespace string, rec offsync.Record) (int64, error) {
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
func (s *SQLiteStore) ScanAll(ctx context.Context, namespace string) ([]offsync.Record, error) {
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
func (s *SQLiteStore) Delete(ctx context.Context, namespace string, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableIdent(namespace))
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

func (s *SQLiteStore) tableIdent(namespace string) string {
	return sqlutil.QuoteIdentifier(sqlutil.TableName(s.prefix, namespace), `"`)
}

// scanRecords drains a result set of (id, priority, attempt_count, sealed).
func scanRecords(rows *sql.Rows) ([]offsync.Record, error) {
	var recs []offsync.Record
	for rows.Next() {
		var (
			rec    offsync.Record
			sealed []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Priority, &rec.AttemptCount, &sealed); err != nil {
			return nil, err
		}
		rec.Sealed = append([]byte(nil), sealed...)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
