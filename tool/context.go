package tool

import (
	"context"
	"fmt"

	"github.com/sidekickdev/agentcore/permission"
)

// Context is the per-invocation capability handle a Tool's Execute
// receives: identity (session/message/agent), filesystem boundaries
// (cwd/root), the abort signal, and the permission/question mediators.
// Both cwd and root must be absolute; paths a tool resolves are checked
// against root via ValidatePath.
type Context struct {
	SessionID string
	MessageID string
	Agent     string
	Cwd       string
	Root      string
	Extra     map[string]any

	Abort <-chan struct{}

	Permissions *permission.Mediator
	Questions   *permission.QuestionMediator
}

// IsAborted reports whether the abort signal has fired.
func (c Context) IsAborted() bool {
	select {
	case <-c.Abort:
		return true
	default:
		return false
	}
}

// AskPermission raises a permission request for kind with the given
// patterns/always-patterns/metadata and returns whether it was granted.
// With no Permissions mediator registered, the default policy is deny.
func (c Context) AskPermission(ctx context.Context, kind string, patterns, alwaysPatterns []string, metadata map[string]any) (bool, error) {
	if c.Permissions == nil {
		return false, nil
	}
	resp, err := c.Permissions.Request(ctx, kind, patterns, alwaysPatterns, metadata)
	if err != nil {
		return false, err
	}
	return resp.Allow, nil
}

// AskQuestion raises clarifying questions and returns the user's
// answers. With no Questions mediator registered, this errors rather
// than silently defaulting — a clarifying question has no safe default.
func (c Context) AskQuestion(ctx context.Context, questions []permission.QuestionInfo) (permission.QuestionResponse, error) {
	if c.Questions == nil {
		return nil, fmt.Errorf("tool: no question mediator registered")
	}
	return c.Questions.Ask(ctx, questions)
}

// ValidateWithinRoot resolves path against this Context's root and
// rejects it if it escapes root.
func (c Context) ValidateWithinRoot(path string) (string, error) {
	return ValidatePath(path, c.Root)
}
