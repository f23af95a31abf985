package tool

// DefaultDoomLoopThreshold is K, the number of identical consecutive
// calls that constitute a doom loop.
const DefaultDoomLoopThreshold = 3

// DoomLoopDetector holds a bounded FIFO history of the most recently
// finalized PendingCalls and signals when the last K are byte-identical
// on (name, arguments) — a strong, cheap sign the model is fixated on a
// single repeated call.
type DoomLoopDetector struct {
	threshold int
	recent    []PendingCall
}

// NewDoomLoopDetector returns a detector bounded to threshold entries. A
// non-positive threshold falls back to DefaultDoomLoopThreshold.
func NewDoomLoopDetector(threshold int) *DoomLoopDetector {
	if threshold <= 0 {
		threshold = DefaultDoomLoopThreshold
	}
	return &DoomLoopDetector{threshold: threshold}
}

// AddCall pushes call onto the history, evicting the oldest entry once
// the history exceeds the threshold.
func (d *DoomLoopDetector) AddCall(call PendingCall) {
	d.recent = append(d.recent, call)
	if len(d.recent) > d.threshold {
		d.recent = d.recent[len(d.recent)-d.threshold:]
	}
}

// AddCalls pushes each call in order.
func (d *DoomLoopDetector) AddCalls(calls []PendingCall) {
	for _, c := range calls {
		d.AddCall(c)
	}
}

// CheckDoomLoop returns the repeated (name, arguments) pair iff the
// history is full (threshold entries) and every entry is identical on
// (name, arguments).
func (d *DoomLoopDetector) CheckDoomLoop() (name, arguments string, fired bool) {
	if len(d.recent) < d.threshold {
		return "", "", false
	}
	first := d.recent[0]
	for _, c := range d.recent[1:] {
		if !c.IsIdenticalTo(first) {
			return "", "", false
		}
	}
	return first.Name, first.Arguments, true
}

// Clear discards the history.
func (d *DoomLoopDetector) Clear() {
	d.recent = nil
}

// Len reports the current history length.
func (d *DoomLoopDetector) Len() int { return len(d.recent) }

// IsEmpty reports whether the history is empty.
func (d *DoomLoopDetector) IsEmpty() bool { return len(d.recent) == 0 }
