package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseOne returns the first event frame yields, or false when it yields
// none, matching the (Event, bool) shape most of this file's table cases
// assert against.
func parseOne(p *AnthropicParser, frame string) (Event, bool) {
	events := p.Parse(frame)
	if len(events) == 0 {
		return Event{}, false
	}
	return events[0], true
}

func TestAnthropicParserTextDelta(t *testing.T) {
	event := "event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}`

	p := NewAnthropicParser()
	got, ok := parseOne(p, event)
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventTextDelta, Text: "Hello"}, got)
}

func TestAnthropicParserThinkingDelta(t *testing.T) {
	event := "event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"Let me think..."}}`

	p := NewAnthropicParser()
	got, ok := parseOne(p, event)
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventReasoningDelta, Text: "Let me think..."}, got)
}

func TestAnthropicParserToolUseStart(t *testing.T) {
	event := "event: content_block_start\n" +
		`data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"tool_123","name":"bash"}}`

	p := NewAnthropicParser()
	got, ok := parseOne(p, event)
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventToolCallStart, ToolCallID: "tool_123", ToolCallName: "bash"}, got)
}

func TestAnthropicParserInputJSONDelta(t *testing.T) {
	start := "event: content_block_start\n" +
		`data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"tool_123","name":"bash"}}`
	delta := "event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"cmd\":"}}`

	p := NewAnthropicParser()
	_, _ = parseOne(p, start)
	got, ok := parseOne(p, delta)
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventToolCallDelta, ToolCallID: "tool_123", ArgumentsDelta: `{"cmd":`}, got)
}

func TestAnthropicParserInputJSONDeltaUnmappedIndexDropped(t *testing.T) {
	delta := "event: content_block_delta\n" +
		`data: {"type":"content_block_delta","index":9,"delta":{"type":"input_json_delta","partial_json":"{}"}}`

	p := NewAnthropicParser()
	_, ok := parseOne(p, delta)
	assert.False(t, ok)
}

func TestAnthropicParserContentBlockStopRemovesMapping(t *testing.T) {
	start := "event: content_block_start\n" +
		`data: {"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"tool_123","name":"bash"}}`
	stop := "event: content_block_stop\n" + `data: {"type":"content_block_stop","index":1}`

	p := NewAnthropicParser()
	_, _ = parseOne(p, start)
	got, ok := parseOne(p, stop)
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventToolCallEnd, ToolCallID: "tool_123"}, got)

	_, ok = parseOne(p, stop)
	assert.False(t, ok, "second stop for the same index has no mapping left")
}

func TestAnthropicParserMessageStop(t *testing.T) {
	p := NewAnthropicParser()
	got, ok := parseOne(p, "event: message_stop\ndata: {}")
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventDone, FinishReason: "stop"}, got)
}

func TestAnthropicParserMessageDeltaStopReason(t *testing.T) {
	event := "event: message_delta\n" + `data: {"type":"message_delta","delta":{"stop_reason":"end_turn"}}`

	p := NewAnthropicParser()
	got, ok := parseOne(p, event)
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventDone, FinishReason: "end_turn"}, got)
}

func TestAnthropicParserUsage(t *testing.T) {
	event := "event: message_delta\n" +
		`data: {"type":"message_delta","usage":{"input_tokens":100,"output_tokens":50,"cache_read_input_tokens":10,"cache_creation_input_tokens":5}}`

	p := NewAnthropicParser()
	got, ok := parseOne(p, event)
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventUsage, Usage: Usage{
		InputTokens: 100, OutputTokens: 50, CacheReadTokens: 10, CacheWriteTokens: 5,
	}}, got)
}

func TestAnthropicParserMessageDeltaUsageAndStopReasonTogether(t *testing.T) {
	event := "event: message_delta\n" +
		`data: {"type":"message_delta","delta":{"stop_reason":"max_tokens"},"usage":{"input_tokens":100,"output_tokens":50}}`

	p := NewAnthropicParser()
	got := p.Parse(event)
	require.Len(t, got, 2, "a closing message_delta frame carries usage and stop_reason independently")
	assert.Equal(t, Event{Type: EventUsage, Usage: Usage{InputTokens: 100, OutputTokens: 50}}, got[0])
	assert.Equal(t, Event{Type: EventDone, FinishReason: "max_tokens"}, got[1])
}

func TestAnthropicParserErrorEvent(t *testing.T) {
	event := "event: error\ndata: " + `{"error":{"message":"Rate limit exceeded"}}`

	p := NewAnthropicParser()
	got, ok := parseOne(p, event)
	require.True(t, ok)
	assert.Equal(t, Event{Type: EventError, Err: "Rate limit exceeded"}, got)
}

func TestAnthropicParserUnknownEventDropped(t *testing.T) {
	p := NewAnthropicParser()
	_, ok := parseOne(p, "event: ping\ndata: {}")
	assert.False(t, ok)
}

func TestAnthropicParserMalformedJSONDropped(t *testing.T) {
	p := NewAnthropicParser()
	_, ok := parseOne(p, "event: content_block_delta\ndata: not-json")
	assert.False(t, ok)
}

func TestAnthropicParserNeverPanicsOnArbitraryInput(t *testing.T) {
	inputs := []string{
		"",
		"garbage",
		"event: content_block_start\ndata: {",
		"event: message_delta\ndata: null",
		"data: no event type line",
	}
	p := NewAnthropicParser()
	for _, in := range inputs {
		assert.NotPanics(t, func() { parseOne(p, in) })
	}
}
