package provider

import (
	"encoding/json"
	"strings"
)

// OpenAIParser is the stateful Dialect B (chunked-JSON) parser. It is not
// restartable; a new response requires a new instance. Construct with
// NewOpenAIParser.
type OpenAIParser struct {
	indexToID map[int64]string
}

// NewOpenAIParser returns a parser with empty index->id state.
func NewOpenAIParser() *OpenAIParser {
	return &OpenAIParser{indexToID: make(map[int64]string)}
}

type openAIChunk struct {
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		PromptTokensDetails *struct {
			CachedTokens int64 `json:"cached_tokens"`
		} `json:"prompt_tokens_details"`
	} `json:"usage"`
	Choices []struct {
		FinishReason *string `json:"finish_reason"`
		Delta        struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int64   `json:"index"`
				ID       *string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
	} `json:"choices"`
}

// Parse consumes one complete line (as produced by Framer with
// DelimiterNewline) and returns the canonical Event it represents, or
// ok=false for lines that yield none: missing "data: " prefix, malformed
// JSON, or a recognized-but-empty delta.
func (p *OpenAIParser) Parse(line string) (Event, bool) {
	data, ok := strings.CutPrefix(line, "data: ")
	if !ok {
		return Event{}, false
	}
	if data == "[DONE]" {
		return Event{Type: EventDone, FinishReason: "stop"}, true
	}

	var parsed openAIChunk
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return Event{}, false
	}

	if parsed.Usage != nil {
		u := Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		}
		if parsed.Usage.PromptTokensDetails != nil {
			u.CacheReadTokens = parsed.Usage.PromptTokensDetails.CachedTokens
		}
		return Event{Type: EventUsage, Usage: u}, true
	}

	if len(parsed.Choices) == 0 {
		return Event{}, false
	}
	choice := parsed.Choices[0]

	if choice.FinishReason != nil && *choice.FinishReason != "" && *choice.FinishReason != "null" {
		return Event{Type: EventDone, FinishReason: *choice.FinishReason}, true
	}

	if choice.Delta.Content != "" {
		return Event{Type: EventTextDelta, Text: choice.Delta.Content}, true
	}

	for _, tc := range choice.Delta.ToolCalls {
		if tc.ID != nil {
			p.indexToID[tc.Index] = *tc.ID
			if tc.Function.Name != "" {
				return Event{Type: EventToolCallStart, ToolCallID: *tc.ID, ToolCallName: tc.Function.Name}, true
			}
			continue
		}
		if id, ok := p.indexToID[tc.Index]; ok && tc.Function.Arguments != "" {
			return Event{Type: EventToolCallDelta, ToolCallID: id, ArgumentsDelta: tc.Function.Arguments}, true
		}
	}

	return Event{}, false
}
