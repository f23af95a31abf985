// Package permission implements the Permission and Question Mediators:
// process-wide brokers that correlate async user decisions with waiting
// tool invocations, with scoped caching of granted rules.
package permission

import "context"

// Scope is the lifetime of a granted permission rule.
type Scope string

const (
	// Once grants this single call only; never cached.
	Once Scope = "once"
	// Session grants for the lifetime of this process.
	Session Scope = "session"
	// Workspace grants persist across processes. The grant store records
	// no root path, so a persisted Workspace grant applies in every root,
	// the same as Global.
	Workspace Scope = "workspace"
	// Global grants for this user across all workspaces, persisted.
	Global Scope = "global"
)

// Request is one tool's ask for authorization to proceed.
type Request struct {
	ID             string
	Kind           string
	Patterns       []string
	AlwaysPatterns []string
	Metadata       map[string]any
}

// Response is the user's (or cache's) decision on a Request.
type Response struct {
	ID    string
	Allow bool
	Scope Scope
}

// Closure delivers req to the UI for a decision. It does not return the
// decision directly — the UI answers asynchronously, later, by calling
// Mediator.Respond with the same request id. Registered once at process
// startup; absent means default-deny.
type Closure func(ctx context.Context, req Request)

// Action is the default per-tool-kind policy consulted before a Request
// is even raised.
type Action string

const (
	ActionAllow Action = "allow"
	ActionAsk   Action = "ask"
	ActionDeny  Action = "deny"
)

// DefaultRules is the per-tool-kind default policy table, reused
// verbatim from the reference implementation's permission checker.
func DefaultRules() map[string]Action {
	return map[string]Action{
		"read":      ActionAllow,
		"write":     ActionAsk,
		"edit":      ActionAsk,
		"bash":      ActionAsk,
		"glob":      ActionAllow,
		"grep":      ActionAllow,
		"question":  ActionAllow,
		"todowrite": ActionAllow,
		"todoread":  ActionAllow,
		"webfetch":  ActionAsk,
		"doom_loop": ActionAsk,
	}
}
