package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"codeberg.org/kartuli/server/internal/flowise"
	"codeberg.org/kartuli/server/internal/logger"
	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/internal/tokens"
)

func NewService(gate Gate, predictor Predictor, counter tokens.Counter) *Service {
	if counter == nil {
		counter = tokens.EstimateCounter{}
	}

	return &Service{
		gate:      gate,
		predictor: predictor,
		counter:   counter,
	}
}

func validateMessage(text string) (string, error) {
	text = strings.TrimSpace(text)

	if text == "" {
		return "", ErrEmptyMessage
	}

	if utf8.RuneCountInString(text) > MaxMessageLength {
		return "", ErrMessageTooLong
	}

	return text, nil
}

// keeps the most recent turns and maps roles to flowise names
func trimHistory(history []Message) []flowise.HistoryMessage {
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}

	out := make([]flowise.HistoryMessage, 0, len(history))

	for _, m := range history {
		role := flowise.RoleUser
		if m.Role == "assistant" {
			role = flowise.RoleAssistant
		}

		out = append(out, flowise.HistoryMessage{Role: role, Content: m.Content})
	}

	return out
}

// estimates the prompt cost of a message and the history sent with it
func (s *Service) PromptTokens(message string, history []Message) int {
	msgs := make([]tokens.Message, 0, len(history)+1)

	for _, m := range history {
		msgs = append(msgs, tokens.Message{Role: m.Role, Content: m.Content})
	}

	msgs = append(msgs, tokens.Message{Role: "user", Content: message})

	return s.counter.CountMessages(msgs)
}

// checks the prompt cost, asks flowise, then records prompt and reply tokens
func (s *Service) Send(ctx context.Context, actor quota.Actor, req Request) (*Reply, error) {
	message, err := validateMessage(req.Message)
	if err != nil {
		return nil, err
	}

	if len(req.History) > MaxHistory {
		req.History = req.History[len(req.History)-MaxHistory:]
	}

	promptTokens := s.PromptTokens(message, req.History)

	decision, err := s.gate.CanConsume(ctx, actor, promptTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to check quota: %w", err)
	}

	if !decision.Allowed {
		return nil, &QuotaError{Resource: "token", Decision: decision}
	}

	prediction, err := s.predictor.Chat(ctx, req.SessionID, message, trimHistory(req.History))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	responseTokens := s.counter.Count(prediction.Text)
	total := promptTokens + responseTokens

	if err := s.gate.AddUsage(ctx, actor, total); err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	logger.Info("chat reply generated",
		"actor_type", actor.Type,
		"actor_id", actor.ID,
		"prompt_tokens", promptTokens,
		"response_tokens", responseTokens,
	)

	usage := decision.Usage
	usage.Daily += total
	usage.Monthly += total

	sessionID := prediction.SessionID
	if sessionID == "" {
		sessionID = req.SessionID
	}

	return &Reply{
		Text:      prediction.Text,
		SessionID: sessionID,
		ChatID:    prediction.ChatID,
		Tokens:    TokenUsage{Prompt: promptTokens, Response: responseTokens, Total: total},
		Usage:     usage,
		Limits:    decision.Limits,
	}, nil
}

// checks the monthly image allowance, generates, and records one image
func (s *Service) GenerateImage(ctx context.Context, actor quota.Actor, req ImageRequest) (*ImageReply, error) {
	prompt, err := validateMessage(req.Prompt)
	if err != nil {
		return nil, err
	}

	decision, err := s.gate.CanGenerateImage(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to check image quota: %w", err)
	}

	if !decision.Allowed {
		return nil, &QuotaError{Resource: "image", Decision: decision}
	}

	prediction, err := s.predictor.GenerateImage(ctx, req.SessionID, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	s.gate.AddImageUsage(ctx, actor, 1)

	usage := decision.Usage
	usage.Images++

	images := prediction.Artifacts
	if images == nil {
		images = []flowise.Artifact{}
	}

	return &ImageReply{
		Text:      prediction.Text,
		Images:    images,
		SessionID: req.SessionID,
		Usage:     usage,
		Limits:    decision.Limits,
	}, nil
}
