// Package provider implements the streaming parsers and clients for the
// two supported wire dialects (Anthropic-style typed SSE and OpenAI-style
// chunked JSON), plus the canonical conversation/message/event types they
// produce and consume.
package provider

// Role is the speaker of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType discriminates the variants of Part.
type PartType string

const (
	PartText       PartType = "text"
	PartToolUse    PartType = "tool_use"
	PartToolResult PartType = "tool_result"
	PartImage      PartType = "image"
)

// ToolPartStatus is the lifecycle state the Message Assembler tracks for a
// ToolUse part: Pending -> Running -> Completed|Error.
type ToolPartStatus string

const (
	ToolPartPending   ToolPartStatus = "pending"
	ToolPartRunning   ToolPartStatus = "running"
	ToolPartCompleted ToolPartStatus = "completed"
	ToolPartError     ToolPartStatus = "error"
)

// Part is one typed fragment of a Message's content. Exactly the fields
// relevant to Type are populated; the rest are zero.
type Part struct {
	Type PartType

	// Text
	Text string

	// ToolUse
	ToolUseID string
	ToolName  string
	Input     map[string]any

	// ToolResult
	ToolUseResultID string
	Content         string
	IsError         bool

	// Image
	ImageURL    string
	ImageDetail string

	// Status tracks a ToolUse part's execution lifecycle. ToolUse sets it
	// to ToolPartPending; other parts leave it empty.
	Status ToolPartStatus
}

// Text returns a Part{Type: PartText}.
func Text(s string) Part { return Part{Type: PartText, Text: s} }

// ToolUse returns a Part{Type: PartToolUse}.
func ToolUse(id, name string, input map[string]any) Part {
	return Part{Type: PartToolUse, ToolUseID: id, ToolName: name, Input: input, Status: ToolPartPending}
}

// ToolResult returns a Part{Type: PartToolResult}.
func ToolResult(toolUseID, content string, isError bool) Part {
	return Part{Type: PartToolResult, ToolUseResultID: toolUseID, Content: content, IsError: isError}
}

// Image returns a Part{Type: PartImage}.
func Image(url, detail string) Part {
	return Part{Type: PartImage, ImageURL: url, ImageDetail: detail}
}

// Message is one turn in a Conversation. Content is either a plain string
// (the common case for user prompts) or a sequence of typed Parts.
type Message struct {
	Role  Role
	Text  string // set when the message is plain text, Parts is empty
	Parts []Part // set when the message has typed content
}

// HasParts reports whether this message carries typed Parts rather than
// plain text.
func (m Message) HasParts() bool { return len(m.Parts) > 0 }

// ToolDefinition is emitted to the model so it knows how to call a tool.
// InputSchema is a JSON Schema object (produced by invopop/jsonschema in
// the examples/ tool implementations).
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema any
}

// Usage is billing/accounting information accrued over a turn.
type Usage struct {
	InputTokens      int64
	OutputTokens     int64
	CacheReadTokens  int64
	CacheWriteTokens int64
}

// Add accrues delta into u in place and returns u for chaining.
func (u *Usage) Add(delta Usage) *Usage {
	u.InputTokens += delta.InputTokens
	u.OutputTokens += delta.OutputTokens
	u.CacheReadTokens += delta.CacheReadTokens
	u.CacheWriteTokens += delta.CacheWriteTokens
	return u
}

// EventType discriminates the variants of Event, the canonical Stream
// Event sum type produced by every parser.
type EventType string

const (
	EventTextDelta              EventType = "text_delta"
	EventReasoningDelta          EventType = "reasoning_delta"
	EventReasoningSignatureDelta EventType = "reasoning_signature_delta"
	EventToolCallStart           EventType = "tool_call_start"
	EventToolCallDelta           EventType = "tool_call_delta"
	EventToolCallEnd             EventType = "tool_call_end"
	EventUsage                   EventType = "usage"
	EventDone                    EventType = "done"
	EventError                   EventType = "error"
)

// Event is one canonical Stream Event. Only the fields relevant to Type
// are populated.
type Event struct {
	Type EventType

	// TextDelta, ReasoningDelta, ReasoningSignatureDelta
	Text string

	// ToolCallStart, ToolCallDelta, ToolCallEnd
	ToolCallID     string
	ToolCallName   string // ToolCallStart only
	ArgumentsDelta string // ToolCallDelta only

	// Usage
	Usage Usage

	// Done
	FinishReason string

	// Error
	Err string
}

// StreamOptions carries ambient per-request knobs the teacher's provider
// layer always threads through (service tier, reasoning effort) beyond
// what the distilled request shape names.
type StreamOptions struct {
	ServiceTier     string
	ReasoningEffort string // "low" | "medium" | "high"
}

// StreamRequest is the public contract of the Streaming Client: one
// operation per dialect, (api_key, endpoint, model_id, messages, tools,
// max_output_tokens, optional_system_prompt) plus the ambient Options.
type StreamRequest struct {
	APIKey          string
	Endpoint        string
	Model           string
	Messages        []Message
	Tools           []ToolDefinition
	MaxOutputTokens int64
	SystemPrompt    string
	Options         StreamOptions
}
