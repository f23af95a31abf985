package tool

import "strings"

// PendingCall is a tool invocation whose arguments have finished
// streaming (or are being snapshotted mid-stream). Arguments are raw,
// concatenated JSON text; parsing happens only at invocation time.
type PendingCall struct {
	ID        string
	Name      string
	Arguments string
}

// IsIdenticalTo reports whether two calls are byte-equal on (name,
// arguments), the signal the Doom-Loop Detector keys on.
func (p PendingCall) IsIdenticalTo(other PendingCall) bool {
	return p.Name == other.Name && p.Arguments == other.Arguments
}

// Tracker reassembles streaming tool-call fragments (ToolCallStart /
// ToolCallDelta / ToolCallEnd events) back into PendingCalls, correlating
// by the stable call id the parser already resolved from the provider's
// index-based deltas. Every operation here is O(1) amortized; JSON
// parsing of arguments happens only when the tool is actually invoked.
type Tracker struct {
	calls map[string]*PendingCall
	order []string
}

// NewTracker returns an empty Tracker, fresh for one streaming turn.
func NewTracker() *Tracker {
	return &Tracker{calls: make(map[string]*PendingCall)}
}

// StartCall begins tracking a new call with empty arguments.
func (t *Tracker) StartCall(id, name string) {
	if _, exists := t.calls[id]; !exists {
		t.order = append(t.order, id)
	}
	t.calls[id] = &PendingCall{ID: id, Name: name}
}

// AddArguments appends delta to the buffered arguments for id. Silently
// does nothing if id is unknown (a late or duplicated delta).
func (t *Tracker) AddArguments(id, delta string) {
	call, ok := t.calls[id]
	if !ok {
		return
	}
	var b strings.Builder
	b.WriteString(call.Arguments)
	b.WriteString(delta)
	call.Arguments = b.String()
}

// FinishCall removes and returns the call for id, if any.
func (t *Tracker) FinishCall(id string) (PendingCall, bool) {
	call, ok := t.calls[id]
	if !ok {
		return PendingCall{}, false
	}
	delete(t.calls, id)
	t.removeFromOrder(id)
	return *call, true
}

// GetAllCalls returns a snapshot of every still-outstanding call, in the
// order StartCall was first seen for each id. Used when the stream ends
// without an explicit ToolCallEnd for some or all calls.
func (t *Tracker) GetAllCalls() []PendingCall {
	out := make([]PendingCall, 0, len(t.order))
	for _, id := range t.order {
		if call, ok := t.calls[id]; ok {
			out = append(out, *call)
		}
	}
	return out
}

// HasCalls reports whether any call is still outstanding.
func (t *Tracker) HasCalls() bool {
	return len(t.calls) > 0
}

// Clear discards all outstanding calls.
func (t *Tracker) Clear() {
	t.calls = make(map[string]*PendingCall)
	t.order = nil
}

func (t *Tracker) removeFromOrder(id string) {
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}
