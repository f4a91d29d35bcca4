package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/kartuli/server/internal/flowise"
	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/internal/tokens"
)

type fakePredictor struct {
	reply    string
	err      error
	calls    int
	question string
	history  []flowise.HistoryMessage
}

func (f *fakePredictor) Chat(_ context.Context, _ string, question string, history []flowise.HistoryMessage) (*flowise.Prediction, error) {
	f.calls++
	f.question = question
	f.history = history

	if f.err != nil {
		return nil, f.err
	}

	return &flowise.Prediction{Text: f.reply, ChatID: "chat-1", SessionID: "s-1"}, nil
}

func (f *fakePredictor) GenerateImage(_ context.Context, _, _ string) (*flowise.Prediction, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return &flowise.Prediction{Artifacts: []flowise.Artifact{{Type: "png", Data: "AAAA"}}}, nil
}

// fixed cost counter: every message costs its content length in bytes
type byteCounter struct{}

func (byteCounter) Count(text string) int { return len(text) }

func (b byteCounter) CountMessages(messages []tokens.Message) int {
	total := 0
	for _, m := range messages {
		total += b.Count(m.Content)
	}

	return total
}

func newService(t *testing.T, predictor *fakePredictor) (*Service, *quota.Gate, *quota.MemoryStore) {
	t.Helper()

	store := quota.NewMemoryStore()
	gate := quota.NewGate(store)

	return NewService(gate, predictor, byteCounter{}), gate, store
}

func TestSend_RecordsPromptAndReply(t *testing.T) {
	predictor := &fakePredictor{reply: "12345"}
	svc, gate, _ := newService(t, predictor)
	actor := quota.Guest("guest-1")

	reply, err := svc.Send(context.Background(), actor, Request{Message: "  hello  "})
	require.NoError(t, err)

	assert.Equal(t, "hello", predictor.question)
	assert.Equal(t, TokenUsage{Prompt: 5, Response: 5, Total: 10}, reply.Tokens)
	assert.Equal(t, 10, reply.Usage.Daily)
	assert.Equal(t, "s-1", reply.SessionID)

	usage, err := gate.Usage(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, 10, usage.Daily)
	assert.Equal(t, 10, usage.Monthly)
}

func TestSend_DeniedBeforeCallingFlowise(t *testing.T) {
	predictor := &fakePredictor{reply: "ok"}
	svc, gate, _ := newService(t, predictor)
	actor := quota.Guest("guest-1")

	require.NoError(t, gate.AddUsage(context.Background(), actor, 1495))

	_, err := svc.Send(context.Background(), actor, Request{Message: "too long"})

	var quotaErr *QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "token", quotaErr.Resource)
	assert.Equal(t, 1495, quotaErr.Decision.Usage.Daily)
	assert.Equal(t, 0, predictor.calls)
}

func TestSend_UpstreamFailureRecordsNothing(t *testing.T) {
	predictor := &fakePredictor{err: errors.New("flowise down")}
	svc, gate, _ := newService(t, predictor)
	actor := quota.User("u-1", quota.PlanFree)

	_, err := svc.Send(context.Background(), actor, Request{Message: "hi"})
	assert.ErrorIs(t, err, ErrUpstream)

	usage, err := gate.Usage(context.Background(), actor)
	require.NoError(t, err)
	assert.Equal(t, quota.Usage{}, usage)
}

func TestSend_Validation(t *testing.T) {
	svc, _, _ := newService(t, &fakePredictor{})
	actor := quota.Guest("guest-1")

	_, err := svc.Send(context.Background(), actor, Request{Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Send(context.Background(), actor, Request{Message: strings.Repeat("ა", MaxMessageLength+1)})
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestSend_TrimsHistory(t *testing.T) {
	predictor := &fakePredictor{reply: "ok"}
	svc, _, _ := newService(t, predictor)

	history := make([]Message, 0, MaxHistory+5)
	for i := range MaxHistory + 5 {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}

		history = append(history, Message{Role: role, Content: "x"})
	}

	reply, err := svc.Send(context.Background(), quota.User("u-1", quota.PlanPremium), Request{Message: "hi", History: history})
	require.NoError(t, err)

	require.Len(t, predictor.history, MaxHistory)
	assert.Equal(t, MaxHistory+2, reply.Tokens.Prompt)
	assert.Equal(t, flowise.RoleAssistant, predictor.history[0].Role)
}

func TestGenerateImage_CountsAndDenies(t *testing.T) {
	predictor := &fakePredictor{}
	svc, _, _ := newService(t, predictor)
	actor := quota.Guest("guest-1")

	for i := range 2 {
		reply, err := svc.GenerateImage(context.Background(), actor, ImageRequest{Prompt: "mtatsminda at night"})
		require.NoError(t, err)
		assert.Equal(t, i+1, reply.Usage.Images)
		assert.Len(t, reply.Images, 1)
	}

	_, err := svc.GenerateImage(context.Background(), actor, ImageRequest{Prompt: "one more"})

	var quotaErr *QuotaError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "image", quotaErr.Resource)
	assert.Equal(t, 2, predictor.calls)
}

func TestNewService_DefaultCounter(t *testing.T) {
	svc := NewService(quota.NewGate(nil), &fakePredictor{}, nil)
	assert.Equal(t, tokens.EstimateCounter{}.Count("hello world!"), svc.counter.Count("hello world!"))
}
