package flowise

import (
	"errors"
	"fmt"
)

var ErrImagesDisabled = errors.New("image chatflow not configured")

// role names flowise expects in history
const (
	RoleUser      = "userMessage"
	RoleAssistant = "apiMessage"
)

type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type PredictionRequest struct {
	Question       string           `json:"question"`
	History        []HistoryMessage `json:"history,omitempty"`
	OverrideConfig map[string]any   `json:"overrideConfig,omitempty"`
	Streaming      bool             `json:"streaming"`
}

type Artifact struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type Prediction struct {
	Text          string     `json:"text"`
	Question      string     `json:"question,omitempty"`
	ChatID        string     `json:"chatId,omitempty"`
	ChatMessageID string     `json:"chatMessageId,omitempty"`
	SessionID     string     `json:"sessionId,omitempty"`
	Artifacts     []Artifact `json:"artifacts,omitempty"`
}

// non-2xx response from flowise
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("flowise request failed with status %d: %s", e.StatusCode, e.Body)
}

// reports whether the failure is worth retrying
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}
