package conversation

import (
	"encoding/json"
	"time"

	"github.com/sidekickdev/agentcore/provider"
	"github.com/sidekickdev/agentcore/tool"
)

// Assembler bridges the canonical event stream into the two persisted
// representations named in §4.9: the in-memory message with typed Parts,
// and (via BuildToolResultMessage) the follow-up tool-result message. It
// also tracks each ToolUse Part's Pending -> Running -> Completed|Error
// lifecycle with transition timestamps, for UI subscribers on the Event
// Bus to observe.
type Assembler struct {
	transitions map[string]PartTransition
}

// PartTransition records when a tool part last changed status.
type PartTransition struct {
	ToolUseID string
	Status    provider.ToolPartStatus
	At        time.Time
}

// NewAssembler returns an Assembler with empty transition history.
func NewAssembler() *Assembler {
	return &Assembler{transitions: make(map[string]PartTransition)}
}

// FinalizeAssistantMessage builds one assistant Message from the turn's
// accreted text and tool uses. Per policy, a streaming turn produces at
// most one assistant message: plain text when there were no tool calls,
// typed Parts otherwise. Every ToolUse Part starts life Pending.
func (a *Assembler) FinalizeAssistantMessage(text string, toolUses []provider.Part, now time.Time) provider.Message {
	if len(toolUses) == 0 {
		return provider.Message{Role: provider.RoleAssistant, Text: text}
	}

	var parts []provider.Part
	if text != "" {
		parts = append(parts, provider.Text(text))
	}
	for _, p := range toolUses {
		p.Status = provider.ToolPartPending
		a.record(p.ToolUseID, provider.ToolPartPending, now)
		parts = append(parts, p)
	}
	return provider.Message{Role: provider.RoleAssistant, Parts: parts}
}

// MarkRunning transitions toolUseID to Running, at dispatch time.
func (a *Assembler) MarkRunning(toolUseID string, now time.Time) {
	a.record(toolUseID, provider.ToolPartRunning, now)
}

// Outcome pairs a ToolUseID with its tool.Result, ready to become one
// ToolResult Part in the follow-up user message.
type Outcome struct {
	ToolUseID string
	Result    tool.Result
}

// BuildToolResultMessage builds the single follow-up user message
// carrying one ToolResult Part per outcome, ordered exactly as given
// (the iteration order of approved_calls, per §5). Each Part's tool
// lifecycle transitions to Completed or Error.
func (a *Assembler) BuildToolResultMessage(outcomes []Outcome, now time.Time) provider.Message {
	parts := make([]provider.Part, 0, len(outcomes))
	for _, o := range outcomes {
		isError := o.Result.IsError()
		content := resultContentJSON(o.Result)
		parts = append(parts, provider.ToolResult(o.ToolUseID, content, isError))

		status := provider.ToolPartCompleted
		if isError {
			status = provider.ToolPartError
		}
		a.record(o.ToolUseID, status, now)
	}
	return provider.Message{Role: provider.RoleUser, Parts: parts}
}

// TransitionOf returns the last recorded transition for toolUseID, if
// any.
func (a *Assembler) TransitionOf(toolUseID string) (PartTransition, bool) {
	t, ok := a.transitions[toolUseID]
	return t, ok
}

func (a *Assembler) record(toolUseID string, status provider.ToolPartStatus, at time.Time) {
	a.transitions[toolUseID] = PartTransition{ToolUseID: toolUseID, Status: status, At: at}
}

// resultContentJSON builds the tool-result content string per §6: a
// JSON-encoded {title, output, metadata, truncated} on success, or
// {title:"Tool Execution Error", error} otherwise.
func resultContentJSON(r tool.Result) string {
	var raw []byte
	if r.IsError() {
		raw, _ = json.Marshal(map[string]any{
			"title": "Tool Execution Error",
			"error": r.Output,
		})
	} else {
		raw, _ = json.Marshal(map[string]any{
			"title":     r.Title,
			"output":    r.Output,
			"metadata":  r.Metadata,
			"truncated": r.Truncated,
		})
	}
	return string(raw)
}
