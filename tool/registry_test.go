package tool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTool struct {
	name  string
	delay time.Duration
	fail  bool
}

func (f fakeTool) ID() string { return f.name }
func (f fakeTool) Definition() Definition {
	return Definition{Name: f.name, Description: "fake"}
}
func (f fakeTool) Execute(ctx context.Context, args map[string]any, tc Context) (Result, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Cancelled(f.name), nil
		}
	}
	if f.fail {
		return Error(f.name, "boom"), nil
	}
	return Success(f.name, "ok", Limits{MaxOutputSize: 1000, MaxOutputLines: 100}), nil
}

func TestRegistryExecuteUnknownToolIsTransportError(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "missing", nil, Context{})
	assert.Error(t, err)
}

func TestRegistryExecuteToolFailureIsNotTransportError(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "bash", fail: true})

	result, err := r.Execute(context.Background(), "bash", nil, Context{})
	require.NoError(t, err)
	assert.True(t, result.IsError())
}

func TestRegistryDefinitions(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "read"})
	r.Register(fakeTool{name: "bash"})

	defs := r.Definitions()
	assert.Len(t, defs, 2)
}

func TestRegistryExecuteAllRunsConcurrently(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "a", delay: 100 * time.Millisecond})
	r.Register(fakeTool{name: "b", delay: 200 * time.Millisecond})
	r.Register(fakeTool{name: "c", delay: 50 * time.Millisecond})

	calls := []Call{{ToolUseID: "1", Name: "a"}, {ToolUseID: "2", Name: "b"}, {ToolUseID: "3", Name: "c"}}

	start := time.Now()
	results := r.ExecuteAll(context.Background(), calls, Context{})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 350*time.Millisecond, "calls should run in parallel, not serially")
	require.Len(t, results, 3)
	for i, call := range calls {
		assert.Equal(t, call.ToolUseID, results[i].ToolUseID)
	}
}

func TestRegistryExecuteAllOneFailureDoesNotCancelSiblings(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "ok"})
	r.Register(fakeTool{name: "bad"})

	calls := []Call{{ToolUseID: "1", Name: "ok"}, {ToolUseID: "2", Name: "missing"}}
	results := r.ExecuteAll(context.Background(), calls, Context{})

	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Result.IsError() == false)
	assert.Error(t, results[1].Err)
}

func TestRegistryExecuteAllAbortProducesCancelledResult(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTool{name: "slow", delay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	results := r.ExecuteAll(ctx, []Call{{ToolUseID: "1", Name: "slow"}}, Context{})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Result.IsError())
}
