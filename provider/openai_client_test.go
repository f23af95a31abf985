package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientStreamsToolCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"read"}}]}}]}`+"\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"a\":1}"}}]}}]}`+"\n")
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	c := NewOpenAIClient()
	events := c.Stream(context.Background(), StreamRequest{Endpoint: srv.URL, APIKey: "k", Model: "m"}, 10)

	var got []Event
	for e := range events {
		got = append(got, e)
	}

	require.Len(t, got, 3)
	assert.Equal(t, Event{Type: EventToolCallStart, ToolCallID: "call_1", ToolCallName: "read"}, got[0])
	assert.Equal(t, Event{Type: EventToolCallDelta, ToolCallID: "call_1", ArgumentsDelta: `{"a":1}`}, got[1])
	assert.Equal(t, Event{Type: EventDone, FinishReason: "stop"}, got[2])
}

func TestOpenAIClientNonSuccessStatusEnhancesModelNotSupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "The requested model is not supported")
	}))
	defer srv.Close()

	c := NewOpenAIClient()
	events := c.Stream(context.Background(), StreamRequest{Endpoint: srv.URL, APIKey: "k", Model: "m"}, 10)

	var got []Event
	for e := range events {
		got = append(got, e)
	}
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Err, "not supported")
	assert.Contains(t, got[0].Err, "enabled")
}

func TestOpenAIClientForbiddenGetsReauthGuidance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "forbidden")
	}))
	defer srv.Close()

	c := NewOpenAIClient()
	events := c.Stream(context.Background(), StreamRequest{Endpoint: srv.URL, APIKey: "k", Model: "m"}, 10)

	var got []Event
	for e := range events {
		got = append(got, e)
	}
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Err, "reauthenticate")
}

func TestOpenAIClientMalformedChunkDoesNotStopStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "data: not-json\n")
		fmt.Fprint(w, `data: {"choices":[{"delta":{"content":"ok"}}]}`+"\n")
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	c := NewOpenAIClient()
	events := c.Stream(context.Background(), StreamRequest{Endpoint: srv.URL, APIKey: "k", Model: "m"}, 10)

	var got []Event
	for e := range events {
		got = append(got, e)
	}
	require.Len(t, got, 2)
	assert.Equal(t, EventTextDelta, got[0].Type)
	assert.Equal(t, EventDone, got[1].Type)
}
