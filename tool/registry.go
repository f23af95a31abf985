package tool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry is the name->Tool map: read-mostly (writes only at startup
// registration), shared across every Agentic Loop turn.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, keyed by its Definition().Name. Registering a
// second tool under the same name replaces the first.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Definition().Name] = t
}

// Definitions returns the Definition of every registered tool, for
// injection into the model's tool list.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Definition())
	}
	return out
}

// Execute runs the named tool. An unknown name is a transport-level
// error ("tool vanished"); a tool that fails internally still returns
// (Result, nil) with Result.IsError() true ("tool refused").
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any, tc Context) (Result, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("tool: unknown tool %q", name)
	}
	return t.Execute(ctx, args, tc)
}

// Call is one tool invocation to dispatch via ExecuteAll.
type Call struct {
	ToolUseID string
	Name      string
	Args      map[string]any
}

// CallResult pairs a Call's ToolUseID with its outcome. Err is set only
// for a transport-level failure (unknown tool); a tool-level refusal is
// carried in Result.IsError() instead.
type CallResult struct {
	ToolUseID string
	Result    Result
	Err       error
}

// ExecuteAll dispatches every call concurrently via errgroup, so one
// slow or failing call never delays or cancels its siblings: each goroutine
// writes its own result slot and always returns nil. Results are returned in the same
// order as calls, regardless of completion order, so callers can
// associate them by index or by ToolUseID.
func (r *Registry) ExecuteAll(ctx context.Context, calls []Call, tc Context) []CallResult {
	results := make([]CallResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			result, err := r.Execute(gctx, call.Name, call.Args, tc)
			results[i] = CallResult{ToolUseID: call.ToolUseID, Result: result, Err: err}
			return nil // never propagate: a single failure must not cancel siblings
		})
	}
	_ = g.Wait()

	return results
}
