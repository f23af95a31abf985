package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sidekickdev/agentcore/logging"
)

const anthropicDefaultEndpoint = "https://api.anthropic.com/v1/messages"

// AnthropicClient issues Dialect A streaming requests directly over
// net/http, rather than through a vendor SDK, so this repo's own parser
// observes the raw SSE byte stream it needs for the parser-totality
// property.
type AnthropicClient struct {
	HTTPClient *http.Client
}

// NewAnthropicClient returns a client with a sane default timeout.
func NewAnthropicClient() *AnthropicClient {
	return &AnthropicClient{HTTPClient: &http.Client{Timeout: 180 * time.Second}}
}

// Stream issues req and returns a bounded channel of canonical Events.
// One goroutine performs the request and writes to the channel; the
// caller reads asynchronously. The channel closes when the body ends, on
// network error (an Error event is emitted first), or when the response
// status is non-success (the body is emitted as one Error event). No
// retries are attempted at this layer.
func (c *AnthropicClient) Stream(ctx context.Context, req StreamRequest, capacity int) <-chan Event {
	if capacity <= 0 {
		capacity = 100
	}
	out := make(chan Event, capacity)

	go func() {
		defer close(out)
		c.run(ctx, req, out)
	}()

	return out
}

func (c *AnthropicClient) run(ctx context.Context, req StreamRequest, out chan<- Event) {
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = anthropicDefaultEndpoint
	}

	body, err := json.Marshal(anthropicRequestBody(req))
	if err != nil {
		out <- Event{Type: EventError, Err: fmt.Sprintf("encoding request: %s", err)}
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		out <- Event{Type: EventError, Err: err.Error()}
		return
	}
	httpReq.Header.Set("x-api-key", req.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		out <- Event{Type: EventError, Err: err.Error()}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		out <- Event{Type: EventError, Err: string(errBody)}
		return
	}

	parser := NewAnthropicParser()
	framer := NewFramer(DelimiterBlankLine)
	log := logging.Get()

	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, frame := range framer.Push(buf[:n]) {
				for _, event := range parser.Parse(frame) {
					select {
					case out <- event:
					case <-ctx.Done():
						return
					}
				}
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				log.Debug().Err(readErr).Msg("anthropic stream read error")
				out <- Event{Type: EventError, Err: readErr.Error()}
			} else {
				for _, frame := range framer.Flush() {
					for _, event := range parser.Parse(frame) {
						out <- event
					}
				}
			}
			return
		}
	}
}
