package chat

import (
	"context"
	"errors"

	"codeberg.org/kartuli/server/internal/flowise"
	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/internal/tokens"
)

const (
	MaxMessageLength = 4000
	MaxHistory       = 20
)

var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message is too long")

	// wraps failures of the flowise call so handlers can answer 502
	ErrUpstream = errors.New("upstream generation failed")
)

// the subset of the quota gate chat needs
type Gate interface {
	CanConsume(ctx context.Context, actor quota.Actor, tokens int) (*quota.Decision, error)
	AddUsage(ctx context.Context, actor quota.Actor, tokens int) error
	CanGenerateImage(ctx context.Context, actor quota.Actor) (*quota.Decision, error)
	AddImageUsage(ctx context.Context, actor quota.Actor, images int)
}

// generates replies and images
type Predictor interface {
	Chat(ctx context.Context, sessionID, question string, history []flowise.HistoryMessage) (*flowise.Prediction, error)
	GenerateImage(ctx context.Context, sessionID, prompt string) (*flowise.Prediction, error)
}

// meters chat and image requests against the quota gate
type Service struct {
	gate      Gate
	predictor Predictor
	counter   tokens.Counter
}

type Message struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content"`
}

type Request struct {
	Message   string    `json:"message" binding:"required"`
	SessionID string    `json:"session_id,omitempty"`
	History   []Message `json:"history,omitempty" binding:"omitempty,max=50,dive"`
}

type TokenUsage struct {
	Prompt   int `json:"prompt"`
	Response int `json:"response"`
	Total    int `json:"total"`
}

type Reply struct {
	Text      string       `json:"text"`
	SessionID string       `json:"session_id,omitempty"`
	ChatID    string       `json:"chat_id,omitempty"`
	Tokens    TokenUsage   `json:"tokens"`
	Usage     quota.Usage  `json:"usage"`
	Limits    quota.Limits `json:"limits"`
}

type ImageRequest struct {
	Prompt    string `json:"prompt" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

type ImageReply struct {
	Text      string             `json:"text,omitempty"`
	Images    []flowise.Artifact `json:"images"`
	SessionID string             `json:"session_id,omitempty"`
	Usage     quota.Usage        `json:"usage"`
	Limits    quota.Limits       `json:"limits"`
}

// returned when the gate denies a request; carries the decision for the response body
type QuotaError struct {
	Resource string
	Decision *quota.Decision
}

func (e *QuotaError) Error() string {
	return e.Resource + " quota exceeded"
}
