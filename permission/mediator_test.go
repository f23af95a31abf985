package permission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediatorDefaultDenyWithNoClosure(t *testing.T) {
	m, err := NewMediator(nil)
	require.NoError(t, err)

	resp, err := m.Request(context.Background(), "bash", nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, resp.Allow)
}

func TestMediatorRequestRespondAllow(t *testing.T) {
	m, err := NewMediator(nil)
	require.NoError(t, err)

	var capturedID string
	m.SetClosure(func(ctx context.Context, req Request) {
		capturedID = req.ID
		go m.Respond(req.ID, true, Session, req.Kind, req.AlwaysPatterns)
	})

	resp, err := m.Request(context.Background(), "bash", []string{"echo x"}, []string{"echo x"}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Allow)
	assert.NotEmpty(t, capturedID)
}

func TestMediatorCachesSessionScopedGrant(t *testing.T) {
	m, err := NewMediator(nil)
	require.NoError(t, err)

	m.SetClosure(func(ctx context.Context, req Request) {
		go m.Respond(req.ID, true, Session, req.Kind, req.AlwaysPatterns)
	})

	_, err = m.Request(context.Background(), "bash", nil, []string{"git *"}, nil)
	require.NoError(t, err)

	// Second request should hit the cache without calling the closure.
	m.SetClosure(func(ctx context.Context, req Request) {
		t.Fatal("closure should not be consulted for a cached always_pattern")
	})
	resp, err := m.Request(context.Background(), "bash", nil, []string{"git *"}, nil)
	require.NoError(t, err)
	assert.True(t, resp.Allow)
}

func TestMediatorOnceScopeNeverCached(t *testing.T) {
	m, err := NewMediator(nil)
	require.NoError(t, err)

	calls := 0
	m.SetClosure(func(ctx context.Context, req Request) {
		calls++
		go m.Respond(req.ID, true, Once, req.Kind, req.AlwaysPatterns)
	})

	_, _ = m.Request(context.Background(), "bash", nil, []string{"git *"}, nil)
	_, _ = m.Request(context.Background(), "bash", nil, []string{"git *"}, nil)
	assert.Equal(t, 2, calls, "Once grants must not be cached")
}

func TestMediatorDenyDoesNotCache(t *testing.T) {
	m, err := NewMediator(nil)
	require.NoError(t, err)

	calls := 0
	m.SetClosure(func(ctx context.Context, req Request) {
		calls++
		go m.Respond(req.ID, false, Once, req.Kind, req.AlwaysPatterns)
	})

	_, _ = m.Request(context.Background(), "bash", nil, []string{"git *"}, nil)
	_, _ = m.Request(context.Background(), "bash", nil, []string{"git *"}, nil)
	assert.Equal(t, 2, calls)
}

func TestMediatorAbortCancelsWait(t *testing.T) {
	m, err := NewMediator(nil)
	require.NoError(t, err)
	m.SetClosure(func(ctx context.Context, req Request) {
		// Never respond — simulate a hung UI; the ctx cancellation below
		// should unblock Request instead.
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = m.Request(ctx, "bash", nil, nil, nil)
	assert.Error(t, err)
}
