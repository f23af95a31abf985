// Package store gives the core's one spot of durable state — the
// persisted keyed store the distilled design assigns to an external UI
// collaborator — a minimal concrete shape: a single SQLite table keyed
// by (kind, pattern, scope), with no migration framework since one table
// needs none. permission.SQLiteStore wraps a GrantStore to persist Workspace/
// Global scoped permission grants; nothing else in the core needs
// durable state, so this is the store's only tenant.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Schema is the DDL applied on open. One row per granted (kind,
// pattern, scope) triple; re-applying it is always safe.
const Schema = `
CREATE TABLE IF NOT EXISTS permission_grant (
	kind    TEXT NOT NULL,
	pattern TEXT NOT NULL,
	scope   TEXT NOT NULL,
	PRIMARY KEY (kind, pattern, scope)
);
`

// Row is one persisted (kind, pattern, scope) grant, with scope left as
// a plain string since GrantStore doesn't know about permission.Scope.
type Row struct {
	Kind    string
	Pattern string
	Scope   string
}

// GrantStore is a tiny SQLite-backed keyed store: one table, upsert-or-
// ignore writes, full-table reads. It knows nothing about permissions
// specifically — callers own the meaning of kind/pattern/scope.
type GrantStore struct {
	db *sql.DB
}

// Open opens (creating if absent) the database at path and applies
// Schema.
func Open(path string) (*GrantStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: pinging %s: %w", path, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("store: applying schema: %w", err)
	}
	return &GrantStore{db: db}, nil
}

// Load returns every persisted row.
func (s *GrantStore) Load() ([]Row, error) {
	rows, err := s.db.Query(`SELECT kind, pattern, scope FROM permission_grant`)
	if err != nil {
		return nil, fmt.Errorf("store: loading rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Kind, &r.Pattern, &r.Scope); err != nil {
			return nil, fmt.Errorf("store: scanning row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Save upserts one row, a no-op if the (kind, pattern, scope) triple
// already exists.
func (s *GrantStore) Save(kind, pattern, scope string) error {
	_, err := s.db.Exec(
		`INSERT INTO permission_grant (kind, pattern, scope) VALUES (?, ?, ?)
		 ON CONFLICT (kind, pattern, scope) DO NOTHING`,
		kind, pattern, scope,
	)
	if err != nil {
		return fmt.Errorf("store: saving row: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *GrantStore) Close() error {
	return s.db.Close()
}
