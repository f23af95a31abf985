// Package agentloop implements the Agentic Loop: the bounded, stateful
// per-turn controller that invokes the Streaming Client, accretes the
// canonical event stream via the Message Assembler and Tool-Call
// Tracker, consults the Doom-Loop Detector and Permission Mediator, and
// dispatches approved tool calls concurrently through the Tool Registry.
package agentloop

import (
	"github.com/sidekickdev/agentcore/eventbus"
	"github.com/sidekickdev/agentcore/provider"
	"github.com/sidekickdev/agentcore/tool"
)

// ErrorKind classifies a terminal or recovered condition, per the nine-
// kind taxonomy: every condition below turn level is recovered locally
// by the parser/tracker; everything here is a turn-level condition. It
// is carried only by TurnError, which BusObserver does not publish.
type ErrorKind string

const (
	KindStream        ErrorKind = "stream"         // transport/network or provider HTTP error
	KindToolExecution ErrorKind = "tool_execution"  // a dispatched tool returned metadata.error=true
	KindToolInvocation ErrorKind = "tool_invocation" // unknown tool name or unparseable arguments
	KindPermissionDenial ErrorKind = "permission_denial"
	KindDoomLoop      ErrorKind = "doom_loop"
	KindStepBudget    ErrorKind = "step_budget"
	KindAbort         ErrorKind = "abort"
)

// StreamDelta is published for every TextDelta event, in arrival order.
type StreamDelta struct {
	SessionID string
	Text      string
}

// ToolCallStarted is published when the tracker begins a new call.
type ToolCallStarted struct {
	SessionID string
	ToolUseID string
	Name      string
}

// ToolResultReady is published once a dispatched tool call has a
// result, success or failure.
type ToolResultReady struct {
	SessionID string
	ToolUseID string
	Result    tool.Result
}

// UsageAccrued is published with the current step's running usage total
// each time the stream reports more. The total starts from zero at every
// step; usage is not summed across the steps of a turn.
type UsageAccrued struct {
	SessionID string
	Usage     provider.Usage
}

// TurnError describes a turn-ending error condition by kind and message.
// BusObserver does not publish it: a turn that ends in error reaches the
// bus only as TurnEnded, whose Reason names the condition ("error",
// "step_budget", "doom_loop", ...) without the error message.
type TurnError struct {
	SessionID string
	Kind      ErrorKind
	Message   string
}

// TurnEnded is published exactly once per Run call, when the turn
// concludes for any reason (natural stop, denial, doom-loop, step
// budget, or abort). Reason mirrors the provider's finish_reason for a
// natural stop, or one of "denied", "doom_loop", "step_budget", "abort",
// "error".
type TurnEnded struct {
	SessionID string
	Reason    string
	Steps     int
}

// StepObserver is notified of every loop-visible event during a Run
// call. The Event Bus publisher below is the production implementation;
// tests may substitute a recording stub.
type StepObserver interface {
	OnText(text string)
	OnToolCall(name, id string)
	OnToolResult(toolUseID string, result tool.Result)
	OnUsage(u provider.Usage)
	OnDone(reason string)
}

// BusObserver publishes every StepObserver callback onto an eventbus.Bus
// as the typed events above, mirroring the teacher's flow-event
// publishing pattern adapted to an in-process bus.
type BusObserver struct {
	Bus       *eventbus.Bus
	SessionID string
}

func (o BusObserver) OnText(text string) {
	eventbus.Publish(o.Bus, StreamDelta{SessionID: o.SessionID, Text: text})
}

func (o BusObserver) OnToolCall(name, id string) {
	eventbus.Publish(o.Bus, ToolCallStarted{SessionID: o.SessionID, ToolUseID: id, Name: name})
}

func (o BusObserver) OnToolResult(toolUseID string, result tool.Result) {
	eventbus.Publish(o.Bus, ToolResultReady{SessionID: o.SessionID, ToolUseID: toolUseID, Result: result})
}

func (o BusObserver) OnUsage(u provider.Usage) {
	eventbus.Publish(o.Bus, UsageAccrued{SessionID: o.SessionID, Usage: u})
}

func (o BusObserver) OnDone(reason string) {
	eventbus.Publish(o.Bus, TurnEnded{SessionID: o.SessionID, Reason: reason})
}

type noopObserver struct{}

func (noopObserver) OnText(string)                    {}
func (noopObserver) OnToolCall(string, string)        {}
func (noopObserver) OnToolResult(string, tool.Result) {}
func (noopObserver) OnUsage(provider.Usage)           {}
func (noopObserver) OnDone(string)                    {}
