package permission

import (
	"context"
	"fmt"
	"sync"

	"github.com/sidekickdev/agentcore/ids"
)

// QuestionOption is one selectable answer to a QuestionInfo.
type QuestionOption struct {
	Label       string
	Description string
}

// QuestionInfo is one clarifying question posed to the user.
type QuestionInfo struct {
	Text         string
	ShortHeader  string
	Options      []QuestionOption
	Multiple     bool
	AllowCustom  bool
}

// QuestionRequest is a batch of questions raised together.
type QuestionRequest struct {
	ID        string
	Questions []QuestionInfo
}

// QuestionResponse holds one answer-list per question, in the same order
// as QuestionRequest.Questions.
type QuestionResponse [][]string

// QuestionClosure delivers a QuestionRequest to the UI; the UI answers
// asynchronously by calling QuestionMediator.Respond.
type QuestionClosure func(ctx context.Context, req QuestionRequest)

// QuestionMediator is the Question Mediator: same shape as Mediator, but
// with no caching — every ask is a fresh interaction.
type QuestionMediator struct {
	mu      sync.Mutex
	pending map[string]chan QuestionResponse
	closure QuestionClosure
}

// NewQuestionMediator returns a mediator with no closure registered.
func NewQuestionMediator() *QuestionMediator {
	return &QuestionMediator{pending: make(map[string]chan QuestionResponse)}
}

// SetClosure registers the UI delivery closure.
func (m *QuestionMediator) SetClosure(c QuestionClosure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closure = c
}

// Ask raises questions and blocks until Respond is called for the same
// request, or ctx is cancelled. Unlike Request, there is no default
// policy to fall back on: no registered closure is an error, since a
// clarifying question has no safe default answer.
func (m *QuestionMediator) Ask(ctx context.Context, questions []QuestionInfo) (QuestionResponse, error) {
	id := ids.New(ids.Request)
	req := QuestionRequest{ID: id, Questions: questions}

	ch := make(chan QuestionResponse, 1)
	m.mu.Lock()
	closure := m.closure
	m.pending[id] = ch
	m.mu.Unlock()

	if closure == nil {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		return nil, fmt.Errorf("permission: no question handler registered")
	}

	closure(ctx, req)

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Respond delivers answers for a pending question request id. A no-op if
// id is unknown (already answered, or its tool aborted).
func (m *QuestionMediator) Respond(id string, answers QuestionResponse) {
	m.mu.Lock()
	ch, ok := m.pending[id]
	if ok {
		delete(m.pending, id)
	}
	m.mu.Unlock()

	if ok {
		ch <- answers
		close(ch)
	}
}
