package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sidekickdev/agentcore/logging"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient issues Dialect B streaming requests directly over
// net/http for the same reason AnthropicClient does: the repo's own
// parser needs the raw chunked-JSON line stream.
type OpenAIClient struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewOpenAIClient returns a client with a sane default timeout, pointed
// at the public OpenAI API.
func NewOpenAIClient() *OpenAIClient {
	return &OpenAIClient{HTTPClient: &http.Client{Timeout: 180 * time.Second}, BaseURL: openAIDefaultBaseURL}
}

// Stream issues req and returns a bounded channel of canonical Events,
// with the same closing/failure semantics as AnthropicClient.Stream.
func (c *OpenAIClient) Stream(ctx context.Context, req StreamRequest, capacity int) <-chan Event {
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

func (c *OpenAIClient) run(ctx context.Context, req StreamRequest, out chan<- Event) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	if req.Endpoint != "" {
		baseURL = req.Endpoint
	}
	url := strings.TrimRight(baseURL, "/") + "/chat/completions"

	body, err := json.Marshal(openAIRequestBody(req))
	if err != nil {
		out <- Event{Type: EventError, Err: fmt.Sprintf("encoding request: %s", err)}
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		out <- Event{Type: EventError, Err: err.Error()}
		return
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		out <- Event{Type: EventError, Err: err.Error()}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		out <- Event{Type: EventError, Err: enhanceOpenAIError(resp.StatusCode, string(errBody))}
		return
	}

	parser := NewOpenAIParser()
	framer := NewFramer(DelimiterNewline)
	log := logging.Get()

	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, line := range framer.Push(buf[:n]) {
				if event, ok := parser.Parse(line); ok {
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
				log.Debug().Err(readErr).Msg("openai stream read error")
				out <- Event{Type: EventError, Err: readErr.Error()}
			} else {
				for _, line := range framer.Flush() {
					if event, ok := parser.Parse(line); ok {
						out <- event
					}
				}
			}
			return
		}
	}
}

// enhanceOpenAIError adds provider-specific guidance for two well-known
// failure cases, mirroring the teacher's Copilot error-enrichment logic.
func enhanceOpenAIError(status int, body string) string {
	if strings.Contains(body, "The requested model is not supported") {
		return body + "\n\nMake sure the model is enabled for this account."
	}
	if status == http.StatusForbidden {
		return "Please reauthenticate with this provider; your credentials were rejected."
	}
	return body
}
