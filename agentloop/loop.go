package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sidekickdev/agentcore/config"
	"github.com/sidekickdev/agentcore/conversation"
	"github.com/sidekickdev/agentcore/logging"
	"github.com/sidekickdev/agentcore/permission"
	"github.com/sidekickdev/agentcore/provider"
	"github.com/sidekickdev/agentcore/tool"
)

// naturalEndReasons are the finish_reason values that end a turn when
// no tool calls are pending.
var naturalEndReasons = map[string]bool{
	"stop":      true,
	"end_turn":  true,
	"length":    true,
}

// StreamClient is the Streaming Client contract the loop depends on:
// one operation, implemented identically by provider.AnthropicClient
// and provider.OpenAIClient.
type StreamClient interface {
	Stream(ctx context.Context, req provider.StreamRequest, capacity int) <-chan provider.Event
}

// TurnConfig carries the per-turn provider parameters the loop doesn't
// own: everything in provider.StreamRequest except Messages, which the
// loop fills in from the running Conversation on every step.
type TurnConfig struct {
	APIKey          string
	Endpoint        string
	Model           string
	Tools           []provider.ToolDefinition
	MaxOutputTokens int64
	SystemPrompt    string
	Options         provider.StreamOptions
}

// Loop is the bounded, stateful controller of one conversation turn. A
// single Loop value is reused across many Run calls; it owns no
// per-turn state itself (that lives in Run's local variables), only the
// shared, process-wide collaborators.
type Loop struct {
	Client      StreamClient
	Registry    *tool.Registry
	Permissions *permission.Mediator
	Rules       map[string]permission.Action
	Config      config.Loop
}

// NewLoop returns a Loop with permission.DefaultRules() as its default
// per-tool policy table.
func NewLoop(client StreamClient, registry *tool.Registry, permissions *permission.Mediator, cfg config.Loop) *Loop {
	return &Loop{
		Client:      client,
		Registry:    registry,
		Permissions: permissions,
		Rules:       permission.DefaultRules(),
		Config:      cfg,
	}
}

// Run drives one conversation turn to completion: it iterates steps
// until a termination condition fires (fatal stream error, denied
// doom-loop, step budget exceeded, natural stop with no pending calls,
// all tools denied, or abort), mutating conv in place and notifying
// observer as it goes. observer may be nil.
func (l *Loop) Run(ctx context.Context, conv *conversation.Conversation, cfg TurnConfig, toolCtx tool.Context, observer StepObserver) error {
	if observer == nil {
		observer = noopObserver{}
	}
	log := logging.Get()

	maxSteps := l.Config.MaxSteps
	if maxSteps <= 0 {
		maxSteps = config.Default().MaxSteps
	}
	doomDetector := tool.NewDoomLoopDetector(l.Config.DoomLoopThreshold)
	asm := conversation.NewAssembler()

	for step := 1; ; step++ {
		if step > maxSteps {
			observer.OnDone("step_budget")
			conv.Append(provider.Message{Role: provider.RoleAssistant, Text: "Stopped: exceeded the maximum number of steps for this turn."})
			log.Warn().Int("step", step).Msg("agentloop: step budget exhausted")
			return nil
		}

		req := provider.StreamRequest{
			APIKey:          cfg.APIKey,
			Endpoint:        cfg.Endpoint,
			Model:           cfg.Model,
			Messages:        conv.Messages,
			Tools:           cfg.Tools,
			MaxOutputTokens: cfg.MaxOutputTokens,
			SystemPrompt:    cfg.SystemPrompt,
			Options:         cfg.Options,
		}
		events := l.Client.Stream(ctx, req, l.Config.EventChannelCapacity)

		result := l.consumeStream(toolCtx, events, observer)

		if result.streamErr != "" {
			observer.OnDone("error")
			conv.Append(provider.Message{Role: provider.RoleAssistant, Text: "Stopped: " + result.streamErr})
			log.Error().Str("err", result.streamErr).Msg("agentloop: stream error")
			return fmt.Errorf("agentloop: stream error: %s", result.streamErr)
		}

		if result.aborted {
			l.finalizeAborted(conv, asm, result)
			observer.OnDone("abort")
			return nil
		}

		pending := result.tracker.GetAllCalls()

		if len(pending) == 0 {
			msg := asm.FinalizeAssistantMessage(result.responseText.String(), nil, time.Now())
			conv.Append(msg)
			if naturalEndReasons[result.finishReason] {
				observer.OnDone(result.finishReason)
				return nil
			}
			continue
		}

		doomDetector.AddCalls(pending)
		if name, args, fired := doomDetector.CheckDoomLoop(); fired {
			allowed, err := toolCtx.AskPermission(ctx, "doom_loop", []string{name}, nil, map[string]any{"name": name, "arguments": args})
			if err != nil || !allowed {
				observer.OnDone("doom_loop")
				conv.Append(provider.Message{
					Role: provider.RoleAssistant,
					Text: fmt.Sprintf("Stopped: repeated call to %q with identical arguments was not approved.", name),
				})
				log.Warn().Str("tool", name).Msg("agentloop: doom loop denied")
				return nil
			}
			doomDetector.Clear()
		}

		approved := l.approveCalls(ctx, toolCtx, pending)
		if len(approved) == 0 {
			msg := asm.FinalizeAssistantMessage(result.responseText.String(), nil, time.Now())
			conv.Append(msg)
			observer.OnDone("denied")
			return nil
		}

		assistantMsg, calls := buildApprovedTurn(asm, result.responseText.String(), approved)
		conv.Append(assistantMsg)

		for _, c := range calls {
			asm.MarkRunning(c.ToolUseID, time.Now())
		}
		callResults := l.Registry.ExecuteAll(ctx, calls, toolCtx)

		outcomes := make([]conversation.Outcome, 0, len(callResults))
		for _, r := range callResults {
			res := r.Result
			if r.Err != nil {
				res = tool.Error(r.ToolUseID, r.Err.Error())
			}
			outcomes = append(outcomes, conversation.Outcome{ToolUseID: r.ToolUseID, Result: res})
			observer.OnToolResult(r.ToolUseID, res)
		}
		conv.Append(asm.BuildToolResultMessage(outcomes, time.Now()))
	}
}

// stepResult is what consumeStream hands back once the event channel
// closes, an Error event arrives, or the abort signal fires.
type stepResult struct {
	tracker      *tool.Tracker
	responseText strings.Builder
	finishReason string
	usage        provider.Usage
	streamErr    string
	aborted      bool
}

// consumeStream drains one step's event channel into a stepResult,
// publishing each observable event as it arrives. Per the Done-vs-close
// ordering rule, it does not stop at Done: some dialects send further
// events (notably Usage) after it.
func (l *Loop) consumeStream(toolCtx tool.Context, events <-chan provider.Event, observer StepObserver) stepResult {
	var r stepResult
	r.tracker = tool.NewTracker()

	for {
		select {
		case <-toolCtx.Abort:
			r.aborted = true
			return r
		case ev, ok := <-events:
			if !ok {
				return r
			}
			switch ev.Type {
			case provider.EventTextDelta:
				r.responseText.WriteString(ev.Text)
				observer.OnText(ev.Text)
			case provider.EventReasoningDelta, provider.EventReasoningSignatureDelta:
				// not added to the persisted transcript by default
			case provider.EventToolCallStart:
				r.tracker.StartCall(ev.ToolCallID, ev.ToolCallName)
				observer.OnToolCall(ev.ToolCallName, ev.ToolCallID)
			case provider.EventToolCallDelta:
				r.tracker.AddArguments(ev.ToolCallID, ev.ArgumentsDelta)
			case provider.EventToolCallEnd:
				// finalization happens via GetAllCalls once the channel closes
			case provider.EventUsage:
				r.usage.Add(ev.Usage)
				observer.OnUsage(r.usage)
			case provider.EventDone:
				r.finishReason = ev.FinishReason
			case provider.EventError:
				r.streamErr = ev.Err
				return r
			}
		}
	}
}

// approveCalls consults Rules for each pending call's default policy,
// raising a Permission Request for Ask and auto-denying Deny, returning
// only the calls the loop may dispatch.
func (l *Loop) approveCalls(ctx context.Context, toolCtx tool.Context, pending []tool.PendingCall) []tool.PendingCall {
	approved := make([]tool.PendingCall, 0, len(pending))
	for _, call := range pending {
		switch l.ruleFor(call.Name) {
		case permission.ActionAllow:
			approved = append(approved, call)
		case permission.ActionDeny:
			continue
		case permission.ActionAsk:
			allowed, err := toolCtx.AskPermission(ctx, call.Name, []string{call.Name}, []string{call.Name}, map[string]any{"arguments": call.Arguments})
			if err == nil && allowed {
				approved = append(approved, call)
			}
		}
	}
	return approved
}

func (l *Loop) ruleFor(toolName string) permission.Action {
	if action, ok := l.Rules[toolName]; ok {
		return action
	}
	return permission.ActionAsk
}

// buildApprovedTurn finalizes the assistant message carrying one
// ToolUse Part per approved call and the matching tool.Call batch to
// dispatch, parsing each call's accumulated argument JSON exactly once.
func buildApprovedTurn(asm *conversation.Assembler, text string, approved []tool.PendingCall) (provider.Message, []tool.Call) {
	toolUseParts := make([]provider.Part, 0, len(approved))
	calls := make([]tool.Call, 0, len(approved))
	for _, call := range approved {
		args := parseArguments(call.Arguments)
		toolUseParts = append(toolUseParts, provider.ToolUse(call.ID, call.Name, args))
		calls = append(calls, tool.Call{ToolUseID: call.ID, Name: call.Name, Args: args})
	}
	msg := asm.FinalizeAssistantMessage(text, toolUseParts, time.Now())
	return msg, calls
}

// parseArguments parses a pending call's accumulated argument bytes.
// Malformed JSON (kind 5, tool invocation failure) is not fatal here:
// the tool itself receives args whose only key, "_unparsed", holds the
// raw text, and is expected to report a tool-level error, per the Tracker's
// invariant that argument parsing happens only at invocation time.
func parseArguments(raw string) map[string]any {
	if raw == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{"_unparsed": raw}
	}
	return args
}

// finalizeAborted appends the partial assistant message and synthesizes
// an aborted ToolResult for every tool call that didn't finish, so the
// Conversation well-formedness invariant holds even mid-abort.
func (l *Loop) finalizeAborted(conv *conversation.Conversation, asm *conversation.Assembler, result stepResult) {
	pending := result.tracker.GetAllCalls()
	now := time.Now()

	toolUseParts := make([]provider.Part, 0, len(pending))
	for _, call := range pending {
		toolUseParts = append(toolUseParts, provider.ToolUse(call.ID, call.Name, parseArguments(call.Arguments)))
	}
	conv.Append(asm.FinalizeAssistantMessage(result.responseText.String(), toolUseParts, now))

	if len(pending) == 0 {
		return
	}
	outcomes := make([]conversation.Outcome, 0, len(pending))
	for _, call := range pending {
		outcomes = append(outcomes, conversation.Outcome{
			ToolUseID: call.ID,
			Result:    tool.Error(call.Name, "aborted"),
		})
	}
	conv.Append(asm.BuildToolResultMessage(outcomes, now))
}
