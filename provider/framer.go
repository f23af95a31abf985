package provider

import "strings"

// Delimiter selects the boundary a Framer splits incoming bytes on.
type Delimiter int

const (
	// DelimiterBlankLine splits on "\n\n", the SSE event boundary used by
	// Dialect A (each frame may itself contain several "\n"-joined
	// lines, e.g. "event: ...\ndata: ...").
	DelimiterBlankLine Delimiter = iota
	// DelimiterNewline splits on a single "\n", the line boundary used by
	// Dialect B.
	DelimiterNewline
)

// Framer buffers arbitrary byte chunks from an HTTP response body and
// yields complete frames split on its configured Delimiter, owning the
// "buffer until the boundary is seen" responsibility so neither parser
// needs to reassemble chunk-split input itself.
type Framer struct {
	delim Delimiter
	buf   strings.Builder
}

// NewFramer returns a Framer that splits on delim.
func NewFramer(delim Delimiter) *Framer {
	return &Framer{delim: delim}
}

// boundary is the literal separator for this Framer's Delimiter.
func (f *Framer) boundary() string {
	if f.delim == DelimiterBlankLine {
		return "\n\n"
	}
	return "\n"
}

// Push appends chunk to the internal buffer and returns every complete
// frame it now contains, in order. Trailing partial data (no boundary
// seen yet) is retained for the next Push.
func (f *Framer) Push(chunk []byte) []string {
	f.buf.Write(chunk)
	pending := f.buf.String()
	boundary := f.boundary()

	var frames []string
	for {
		idx := strings.Index(pending, boundary)
		if idx < 0 {
			break
		}
		frames = append(frames, pending[:idx])
		pending = pending[idx+len(boundary):]
	}

	f.buf.Reset()
	f.buf.WriteString(pending)
	return frames
}

// Flush returns any remaining buffered bytes as a final frame (used when
// the response body ends without a trailing boundary) and resets the
// buffer. An empty remainder yields no frame.
func (f *Framer) Flush() []string {
	remaining := f.buf.String()
	f.buf.Reset()
	if remaining == "" {
		return nil
	}
	return []string{remaining}
}
