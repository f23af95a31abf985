package permission

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sidekickdev/agentcore/ids"
)

// grantKey identifies a cached granted rule.
type grantKey struct {
	kind    string
	pattern string
}

type grant struct {
	scope Scope
}

// Mediator is the process-wide Permission Mediator: it correlates
// outstanding Requests with one-shot decision channels, and caches
// granted rules scoped Session/Workspace/Global (Once is never cached).
// Workspace and Global grants also persist to a Store, reloaded here at
// construction.
type Mediator struct {
	mu      sync.Mutex
	pending map[string]chan Response
	grants  map[grantKey]grant
	closure Closure
	store   Store
}

// Store is the minimal persistence contract the Permission Mediator
// needs for Workspace/Global scoped grants; permission/store.go provides
// a SQLite-backed implementation.
type Store interface {
	Load() ([]PersistedGrant, error)
	Save(kind, pattern string, scope Scope) error
}

// PersistedGrant is one row loaded back from Store.Load.
type PersistedGrant struct {
	Kind    string
	Pattern string
	Scope   Scope
}

// NewMediator returns a Mediator with no closure registered (default
// policy: deny). If store is non-nil, previously persisted Workspace/
// Global grants are loaded immediately.
func NewMediator(store Store) (*Mediator, error) {
	m := &Mediator{
		pending: make(map[string]chan Response),
		grants:  make(map[grantKey]grant),
		store:   store,
	}
	if store != nil {
		persisted, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("permission: loading persisted grants: %w", err)
		}
		for _, g := range persisted {
			m.grants[grantKey{kind: g.Kind, pattern: g.Pattern}] = grant{scope: g.Scope}
		}
	}
	return m, nil
}

// SetClosure registers the UI delivery closure. Passing nil reverts to
// the default-deny policy.
func (m *Mediator) SetClosure(c Closure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closure = c
}

// Request asks for authorization. If any of alwaysPatterns matches an
// already-granted (non-Once) rule for kind, it returns Allow immediately
// without consulting the UI. Otherwise it raises a fresh request,
// delivers it via the registered closure, and blocks until Respond is
// called with the same id or ctx is cancelled (the abort signal).
func (m *Mediator) Request(ctx context.Context, kind string, patterns, alwaysPatterns []string, metadata map[string]any) (Response, error) {
	if scope, ok := m.cachedGrant(kind, alwaysPatterns); ok {
		return Response{Allow: true, Scope: scope}, nil
	}

	id := ids.New(ids.Request) + "_" + uuid.NewString()
	req := Request{ID: id, Kind: kind, Patterns: patterns, AlwaysPatterns: alwaysPatterns, Metadata: metadata}

	ch := make(chan Response, 1)
	m.mu.Lock()
	closure := m.closure
	m.pending[id] = ch
	m.mu.Unlock()

	if closure == nil {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		return Response{ID: id, Allow: false, Scope: Once}, nil
	}

	closure(ctx, req)

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		return Response{}, ctx.Err()
	}
}

// Respond delivers a decision for a pending request id. If it grants
// with a non-Once scope, the rule is cached (and, for Workspace/Global,
// persisted) for future always-pattern matches.
func (m *Mediator) Respond(id string, allow bool, scope Scope, kind string, alwaysPatterns []string) {
	m.mu.Lock()
	ch, ok := m.pending[id]
	if ok {
		delete(m.pending, id)
	}
	m.mu.Unlock()

	if ok {
		ch <- Response{ID: id, Allow: allow, Scope: scope}
		close(ch)
	}

	if allow && scope != Once {
		m.cacheGrant(kind, alwaysPatterns, scope)
	}
}

func (m *Mediator) cachedGrant(kind string, alwaysPatterns []string) (Scope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pattern := range alwaysPatterns {
		if g, ok := m.grants[grantKey{kind: kind, pattern: pattern}]; ok {
			return g.scope, true
		}
	}
	return "", false
}

func (m *Mediator) cacheGrant(kind string, alwaysPatterns []string, scope Scope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pattern := range alwaysPatterns {
		m.grants[grantKey{kind: kind, pattern: pattern}] = grant{scope: scope}
	}
	if m.store != nil && (scope == Workspace || scope == Global) {
		for _, pattern := range alwaysPatterns {
			_ = m.store.Save(kind, pattern, scope)
		}
	}
}

// MatchesPattern reports whether candidate matches the glob-style
// pattern the way the default UI closures interpret always_patterns
// (e.g. "bash:git *" or a bare filepath glob).
func MatchesPattern(pattern, candidate string) bool {
	ok, err := filepath.Match(pattern, candidate)
	return err == nil && ok
}
