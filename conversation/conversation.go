// Package conversation owns the Conversation data model and the Message
// Assembler that bridges the canonical event stream into persisted
// message parts, tracking each tool part's Pending -> Running ->
// Completed|Error lifecycle.
package conversation

import "github.com/sidekickdev/agentcore/provider"

// Conversation is an ordered, append-only sequence of Messages. No
// cyclic graphs occur here: tool_use_ids are referenced by value, never
// by pointer, and a forked session would be modeled as a new Conversation
// parented by id, not as a graph within one.
type Conversation struct {
	Messages []provider.Message
}

// Append adds msg to the end of the conversation.
func (c *Conversation) Append(msg provider.Message) {
	c.Messages = append(c.Messages, msg)
}

// LastToolUseIDs returns the ToolUseID of every ToolUse part in the last
// message, if the last message is an assistant message.
func (c *Conversation) LastToolUseIDs() []string {
	if len(c.Messages) == 0 {
		return nil
	}
	last := c.Messages[len(c.Messages)-1]
	if last.Role != provider.RoleAssistant {
		return nil
	}
	var ids []string
	for _, p := range last.Parts {
		if p.Type == provider.PartToolUse {
			ids = append(ids, p.ToolUseID)
		}
	}
	return ids
}

// IsWellFormed checks the core's central invariant: every ToolUse emitted
// by an assistant message is answered, before the next assistant turn,
// by a ToolResult in the immediately following user message carrying the
// matching tool_use_id.
func (c *Conversation) IsWellFormed() bool {
	for i, msg := range c.Messages {
		if msg.Role != provider.RoleAssistant {
			continue
		}
		var pendingIDs []string
		for _, p := range msg.Parts {
			if p.Type == provider.PartToolUse {
				pendingIDs = append(pendingIDs, p.ToolUseID)
			}
		}
		if len(pendingIDs) == 0 {
			continue
		}
		if i+1 >= len(c.Messages) {
			return false
		}
		next := c.Messages[i+1]
		if next.Role != provider.RoleUser {
			return false
		}
		answered := make(map[string]bool)
		for _, p := range next.Parts {
			if p.Type == provider.PartToolResult {
				answered[p.ToolUseResultID] = true
			}
		}
		for _, id := range pendingIDs {
			if !answered[id] {
				return false
			}
		}
	}
	return true
}
