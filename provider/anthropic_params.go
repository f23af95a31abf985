package provider

// anthropicRequestBody builds the Dialect A wire body. Parts are
// preserved structurally: each canonical Part maps to one content block
// of the matching shape.
func anthropicRequestBody(req StreamRequest) map[string]any {
	body := map[string]any{
		"model":      req.Model,
		"max_tokens": req.MaxOutputTokens,
		"messages":   anthropicMessages(req.Messages),
		"stream":     true,
	}
	if req.SystemPrompt != "" {
		body["system"] = req.SystemPrompt
	}
	if len(req.Tools) > 0 {
		body["tools"] = anthropicTools(req.Tools)
	}
	if budget, ok := thinkingBudget(req.Options.ReasoningEffort); ok {
		body["thinking"] = map[string]any{"type": "enabled", "budget_tokens": budget}
	}
	if req.Options.ServiceTier != "" {
		body["service_tier"] = req.Options.ServiceTier
	}
	return body
}

func anthropicMessages(messages []Message) []map[string]any {
	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		if !m.HasParts() {
			out = append(out, map[string]any{"role": string(m.Role), "content": m.Text})
			continue
		}
		out = append(out, map[string]any{"role": string(m.Role), "content": anthropicContentBlocks(m.Parts)})
	}
	return out
}

func anthropicContentBlocks(parts []Part) []map[string]any {
	blocks := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case PartText:
			blocks = append(blocks, map[string]any{"type": "text", "text": p.Text})
		case PartToolUse:
			blocks = append(blocks, map[string]any{
				"type": "tool_use", "id": p.ToolUseID, "name": p.ToolName, "input": p.Input,
			})
		case PartToolResult:
			blocks = append(blocks, map[string]any{
				"type": "tool_result", "tool_use_id": p.ToolUseResultID, "content": p.Content, "is_error": p.IsError,
			})
		case PartImage:
			blocks = append(blocks, map[string]any{
				"type": "image", "source": map[string]any{"type": "url", "url": p.ImageURL},
			})
		}
	}
	return blocks
}

func anthropicTools(tools []ToolDefinition) []map[string]any {
	out := make([]map[string]any, len(tools))
	for i, t := range tools {
		out[i] = map[string]any{"name": t.Name, "description": t.Description, "input_schema": t.InputSchema}
	}
	return out
}

// thinkingBudget maps a reasoning effort knob to an Anthropic extended
// thinking token budget, following the teacher's provider layer's
// budgetTokens table.
func thinkingBudget(effort string) (int, bool) {
	switch effort {
	case "low":
		return 4096, true
	case "medium":
		return 16384, true
	case "high":
		return 32768, true
	default:
		return 0, false
	}
}
