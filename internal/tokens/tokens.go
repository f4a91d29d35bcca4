package tokens

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"codeberg.org/kartuli/server/internal/logger"
)

const (
	DefaultEncoding = "cl100k_base"

	// chat framing overhead per message and per reply
	tokensPerMessage = 3
	tokensPerReply   = 3
)

// counts tokens in prompts and replies
type Counter interface {
	Count(text string) int
	CountMessages(messages []Message) int
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// counts with a BPE encoding
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.Mutex
}

// approximates counts without an encoding table
type EstimateCounter struct{}

// returns a tiktoken counter, or the estimator when the encoding cannot be loaded
func NewCounter(encoding string) Counter {
	counter, err := NewTiktokenCounter(encoding)
	if err != nil {
		logger.WarnErr(err, "tokenizer unavailable, using estimates", "encoding", encoding)
		return EstimateCounter{}
	}

	return counter
}

func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", encoding, err)
	}

	return &TiktokenCounter{encoding: enc}, nil
}

func (tc *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	return len(tc.encoding.Encode(text, nil, nil))
}

func (tc *TiktokenCounter) CountMessages(messages []Message) int {
	return countMessages(tc, messages)
}

// ascii runs average four characters per token; other scripts (georgian included)
// split into roughly one token per rune
func (EstimateCounter) Count(text string) int {
	ascii, other := 0, 0

	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]

		if r < utf8.RuneSelf {
			ascii++
		} else {
			other++
		}
	}

	return (ascii+3)/4 + other
}

func (e EstimateCounter) CountMessages(messages []Message) int {
	return countMessages(e, messages)
}

func countMessages(c Counter, messages []Message) int {
	if len(messages) == 0 {
		return 0
	}

	total := tokensPerReply
	for _, m := range messages {
		total += tokensPerMessage + c.Count(m.Role) + c.Count(m.Content)
	}

	return total
}
