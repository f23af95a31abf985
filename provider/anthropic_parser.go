package provider

import (
	"encoding/json"
	"strings"
)

// AnthropicParser is the stateful Dialect A (typed-SSE) parser. It is not
// restartable; a new response requires a new instance. Construct with
// NewAnthropicParser.
type AnthropicParser struct {
	indexToID map[int64]string
}

// NewAnthropicParser returns a parser with empty index->id state.
func NewAnthropicParser() *AnthropicParser {
	return &AnthropicParser{indexToID: make(map[int64]string)}
}

// Parse consumes one complete SSE frame (as produced by Framer with
// DelimiterBlankLine: an "event: ...\ndata: ..." block) and returns the
// canonical Events it represents. Most frames yield at most one event; a
// closing message_delta frame can carry both a usage update and the final
// stop_reason at once and yields both. A nil/empty result means the frame
// yields none (unknown event type, or malformed/incomplete data — both are
// dropped silently per the parser-totality property).
func (p *AnthropicParser) Parse(frame string) []Event {
	var eventType, data string
	for _, line := range strings.Split(frame, "\n") {
		if rest, ok := strings.CutPrefix(line, "event: "); ok {
			eventType = rest
		} else if rest, ok := strings.CutPrefix(line, "data: "); ok {
			data = rest
		}
	}
	if eventType == "" || data == "" {
		return nil
	}

	switch eventType {
	case "content_block_delta":
		if event, ok := p.parseContentBlockDelta(data); ok {
			return []Event{event}
		}
		return nil
	case "content_block_start":
		if event, ok := p.parseContentBlockStart(data); ok {
			return []Event{event}
		}
		return nil
	case "content_block_stop":
		if event, ok := p.parseContentBlockStop(data); ok {
			return []Event{event}
		}
		return nil
	case "message_delta":
		return p.parseMessageDelta(data)
	case "message_stop":
		return []Event{{Type: EventDone, FinishReason: "stop"}}
	case "error":
		if event, ok := p.parseError(data); ok {
			return []Event{event}
		}
		return nil
	default:
		return nil
	}
}

func (p *AnthropicParser) parseContentBlockDelta(data string) (Event, bool) {
	var parsed struct {
		Index int64 `json:"index"`
		Delta struct {
			Type        string `json:"type"`
			Text        string `json:"text"`
			Thinking    string `json:"thinking"`
			Signature   string `json:"signature"`
			PartialJSON string `json:"partial_json"`
		} `json:"delta"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return Event{}, false
	}

	switch parsed.Delta.Type {
	case "text_delta":
		return Event{Type: EventTextDelta, Text: parsed.Delta.Text}, true
	case "thinking_delta":
		return Event{Type: EventReasoningDelta, Text: parsed.Delta.Thinking}, true
	case "signature_delta":
		return Event{Type: EventReasoningSignatureDelta, Text: parsed.Delta.Signature}, true
	case "input_json_delta":
		id, ok := p.indexToID[parsed.Index]
		if !ok {
			return Event{}, false
		}
		return Event{Type: EventToolCallDelta, ToolCallID: id, ArgumentsDelta: parsed.Delta.PartialJSON}, true
	default:
		return Event{}, false
	}
}

func (p *AnthropicParser) parseContentBlockStart(data string) (Event, bool) {
	var parsed struct {
		Index        int64 `json:"index"`
		ContentBlock struct {
			Type string `json:"type"`
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"content_block"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return Event{}, false
	}
	if parsed.ContentBlock.Type != "tool_use" {
		return Event{}, false
	}
	p.indexToID[parsed.Index] = parsed.ContentBlock.ID
	return Event{Type: EventToolCallStart, ToolCallID: parsed.ContentBlock.ID, ToolCallName: parsed.ContentBlock.Name}, true
}

func (p *AnthropicParser) parseContentBlockStop(data string) (Event, bool) {
	var parsed struct {
		Index int64 `json:"index"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return Event{}, false
	}
	id, ok := p.indexToID[parsed.Index]
	if !ok {
		return Event{}, false
	}
	delete(p.indexToID, parsed.Index)
	return Event{Type: EventToolCallEnd, ToolCallID: id}, true
}

// parseMessageDelta handles both independent conditions a message_delta
// frame can carry: usage and delta.stop_reason are unrelated fields, and
// the normal closing frame of a turn carries both at once. Each is checked
// and emitted on its own rather than one taking precedence over the other.
func (p *AnthropicParser) parseMessageDelta(data string) []Event {
	var parsed struct {
		Usage *struct {
			InputTokens              int64 `json:"input_tokens"`
			OutputTokens             int64 `json:"output_tokens"`
			CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
			CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
		} `json:"usage"`
		Delta struct {
			StopReason *string `json:"stop_reason"`
		} `json:"delta"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return nil
	}

	var events []Event
	if parsed.Usage != nil {
		events = append(events, Event{Type: EventUsage, Usage: Usage{
			InputTokens:      parsed.Usage.InputTokens,
			OutputTokens:     parsed.Usage.OutputTokens,
			CacheReadTokens:  parsed.Usage.CacheReadInputTokens,
			CacheWriteTokens: parsed.Usage.CacheCreationInputTokens,
		}})
	}
	if parsed.Delta.StopReason != nil {
		events = append(events, Event{Type: EventDone, FinishReason: *parsed.Delta.StopReason})
	}
	return events
}

func (p *AnthropicParser) parseError(data string) (Event, bool) {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(data), &parsed); err != nil {
		return Event{}, false
	}
	message := parsed.Error.Message
	if message == "" {
		message = "Unknown error"
	}
	return Event{Type: EventError, Err: message}, true
}
