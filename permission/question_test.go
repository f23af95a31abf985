package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionMediatorNoHandlerErrors(t *testing.T) {
	m := NewQuestionMediator()
	_, err := m.Ask(context.Background(), []QuestionInfo{{Text: "proceed?"}})
	assert.Error(t, err)
}

func TestQuestionMediatorAskRespond(t *testing.T) {
	m := NewQuestionMediator()
	m.SetClosure(func(ctx context.Context, req QuestionRequest) {
		go m.Respond(req.ID, QuestionResponse{{"yes"}})
	})

	resp, err := m.Ask(context.Background(), []QuestionInfo{{Text: "proceed?"}})
	require.NoError(t, err)
	assert.Equal(t, QuestionResponse{{"yes"}}, resp)
}

func TestQuestionMediatorNeverCaches(t *testing.T) {
	m := NewQuestionMediator()
	calls := 0
	m.SetClosure(func(ctx context.Context, req QuestionRequest) {
		calls++
		go m.Respond(req.ID, QuestionResponse{{"yes"}})
	})

	_, _ = m.Ask(context.Background(), []QuestionInfo{{Text: "proceed?"}})
	_, _ = m.Ask(context.Background(), []QuestionInfo{{Text: "proceed?"}})
	assert.Equal(t, 2, calls)
}
