package permission

import (
	"fmt"

	"github.com/sidekickdev/agentcore/store"
)

// SQLiteStore adapts a store.GrantStore (kind/pattern/scope as plain
// strings) to the Mediator's Store interface (scope as a Scope). The
// persistence itself lives in store.GrantStore/store.Schema; this file
// only owns the Scope<->string conversion.
type SQLiteStore struct {
	grants *store.GrantStore
}

// NewSQLiteStore opens (creating if absent) the grant database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	g, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("permission: opening grant store: %w", err)
	}
	return &SQLiteStore{grants: g}, nil
}

// Load returns every persisted grant row.
func (s *SQLiteStore) Load() ([]PersistedGrant, error) {
	rows, err := s.grants.Load()
	if err != nil {
		return nil, fmt.Errorf("permission: loading grants: %w", err)
	}
	out := make([]PersistedGrant, 0, len(rows))
	for _, r := range rows {
		out = append(out, PersistedGrant{Kind: r.Kind, Pattern: r.Pattern, Scope: Scope(r.Scope)})
	}
	return out, nil
}

// Save upserts one grant row. No grant is qualified by workspace root:
// Global grants, as in the reference implementation (see DESIGN.md's
// Open Question on this), and Workspace grants too, since a row has no
// root column.
func (s *SQLiteStore) Save(kind, pattern string, scope Scope) error {
	if err := s.grants.Save(kind, pattern, string(scope)); err != nil {
		return fmt.Errorf("permission: saving grant: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.grants.Close()
}
