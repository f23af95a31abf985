package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicRequestBodyIncludesSystemAndTools(t *testing.T) {
	req := StreamRequest{
		Model:           "claude",
		SystemPrompt:    "be helpful",
		MaxOutputTokens: 1024,
		Tools:           []ToolDefinition{{Name: "read", Description: "reads a file"}},
		Messages:        []Message{{Role: RoleUser, Text: "hello"}},
	}

	body := anthropicRequestBody(req)
	assert.Equal(t, "be helpful", body["system"])
	tools, ok := body["tools"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	assert.Equal(t, "read", tools[0]["name"])
}

func TestAnthropicContentBlocksPreservePartsStructurally(t *testing.T) {
	msg := Message{Role: RoleAssistant, Parts: []Part{
		Text("thinking"),
		ToolUse("t1", "bash", map[string]any{"command": "ls"}),
	}}

	blocks := anthropicContentBlocks(msg.Parts)
	require.Len(t, blocks, 2)
	assert.Equal(t, "text", blocks[0]["type"])
	assert.Equal(t, "tool_use", blocks[1]["type"])
	assert.Equal(t, "t1", blocks[1]["id"])
}

func TestThinkingBudgetMapping(t *testing.T) {
	budget, ok := thinkingBudget("high")
	require.True(t, ok)
	assert.Equal(t, 32768, budget)

	_, ok = thinkingBudget("")
	assert.False(t, ok)
}
