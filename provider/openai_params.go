package provider

import "encoding/json"

// openAIRequestBody builds the Dialect B wire body. Tool-bearing Parts
// are flattened: a ToolUse part on an assistant message becomes a
// tool_calls entry on that message; a ToolResult part becomes its own
// "tool"-role message, per §4.2.
func openAIRequestBody(req StreamRequest) map[string]any {
	body := map[string]any{
		"model":    req.Model,
		"messages": openAIMessages(req),
		"stream":   true,
		"stream_options": map[string]any{
			"include_usage": true,
		},
	}
	if req.MaxOutputTokens > 0 {
		body["max_tokens"] = req.MaxOutputTokens
	}
	if len(req.Tools) > 0 {
		body["tools"] = openAITools(req.Tools)
	}
	return body
}

func openAIMessages(req StreamRequest) []map[string]any {
	out := make([]map[string]any, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		out = append(out, map[string]any{"role": "system", "content": req.SystemPrompt})
	}

	for _, m := range req.Messages {
		if !m.HasParts() {
			out = append(out, map[string]any{"role": string(m.Role), "content": m.Text})
			continue
		}
		out = append(out, openAIMessageFromParts(m)...)
	}
	return out
}

func openAIMessageFromParts(m Message) []map[string]any {
	var text string
	var toolCalls []map[string]any
	var toolResultMessages []map[string]any

	for _, p := range m.Parts {
		switch p.Type {
		case PartText:
			text += p.Text
		case PartToolUse:
			args, _ := json.Marshal(p.Input)
			toolCalls = append(toolCalls, map[string]any{
				"id":   p.ToolUseID,
				"type": "function",
				"function": map[string]any{
					"name":      p.ToolName,
					"arguments": string(args),
				},
			})
		case PartToolResult:
			toolResultMessages = append(toolResultMessages, map[string]any{
				"role":         "tool",
				"tool_call_id": p.ToolUseResultID,
				"content":      p.Content,
			})
		case PartImage:
			// OpenAI image parts are represented inline in content arrays;
			// omitted here since no example tool produces assistant-authored
			// images in this repo's scope.
		}
	}

	var out []map[string]any
	if text != "" || len(toolCalls) > 0 {
		msg := map[string]any{"role": string(m.Role)}
		if text != "" {
			msg["content"] = text
		} else {
			msg["content"] = nil
		}
		if len(toolCalls) > 0 {
			msg["tool_calls"] = toolCalls
		}
		out = append(out, msg)
	}
	out = append(out, toolResultMessages...)
	return out
}

// openAIMessagesToParts reconstructs a normalized []Message from a wire
// body produced by openAIMessages, to the extent Dialect B can represent
// it (text and tool_calls on one message; the tool-role messages that
// follow it gathered into one user message of ToolResult parts). Used
// only to check the round-trip property in tests.
func openAIMessagesToParts(raw []map[string]any) []Message {
	var out []Message
	var pending *Message

	flush := func() {
		if pending != nil {
			out = append(out, *pending)
			pending = nil
		}
	}

	for _, m := range raw {
		role, _ := m["role"].(string)
		if role == "tool" {
			if pending == nil {
				continue
			}
			if pending.Role != RoleUser {
				flush()
				pending = &Message{Role: RoleUser}
			}
			content, _ := m["content"].(string)
			toolCallID, _ := m["tool_call_id"].(string)
			pending.Parts = append(pending.Parts, ToolResult(toolCallID, content, false))
			continue
		}

		flush()
		msg := Message{Role: Role(role)}
		if text, ok := m["content"].(string); ok && text != "" {
			msg.Parts = append(msg.Parts, Text(text))
		}
		if calls, ok := m["tool_calls"].([]map[string]any); ok {
			for _, c := range calls {
				id, _ := c["id"].(string)
				fn, _ := c["function"].(map[string]any)
				name, _ := fn["name"].(string)
				argsRaw, _ := fn["arguments"].(string)
				var input map[string]any
				_ = json.Unmarshal([]byte(argsRaw), &input)
				msg.Parts = append(msg.Parts, ToolUse(id, name, input))
			}
		}
		pending = &msg
	}
	flush()
	return out
}

func openAITools(tools []ToolDefinition) []map[string]any {
	out := make([]map[string]any, len(tools))
	for i, t := range tools {
		out[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.InputSchema,
			},
		}
	}
	return out
}
