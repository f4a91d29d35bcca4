package flowise

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"codeberg.org/kartuli/server/internal/config"
	"codeberg.org/kartuli/server/internal/logger"
)

const maxErrorBody = 2048

// calls the flowise prediction API
type Client struct {
	cfg        config.FlowiseConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	newBackOff func() backoff.BackOff
}

func NewClient(cfg config.FlowiseConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 20
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 10),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
}

// sends a chat message to the configured text chatflow
func (c *Client) Chat(ctx context.Context, sessionID, question string, history []HistoryMessage) (*Prediction, error) {
	return c.Predict(ctx, c.cfg.ChatflowID, PredictionRequest{
		Question:       question,
		History:        history,
		OverrideConfig: sessionOverride(sessionID),
	})
}

// asks the image chatflow for a picture
func (c *Client) GenerateImage(ctx context.Context, sessionID, prompt string) (*Prediction, error) {
	if c.cfg.ImageChatflowID == "" {
		return nil, ErrImagesDisabled
	}

	return c.Predict(ctx, c.cfg.ImageChatflowID, PredictionRequest{
		Question:       prompt,
		OverrideConfig: sessionOverride(sessionID),
	})
}

// posts a prediction, retrying transport errors and 5xx/429 responses
func (c *Client) Predict(ctx context.Context, chatflowID string, req PredictionRequest) (*Prediction, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/prediction/%s", c.cfg.BaseURL, chatflowID)
	attempt := 0

	operation := func() (*Prediction, error) {
		attempt++

		prediction, err := c.do(ctx, url, body)
		if err == nil {
			return prediction, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			return nil, backoff.Permanent(err)
		}

		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}

		logger.Warn("flowise request failed, retrying",
			"chatflow_id", chatflowID,
			"attempt", attempt,
			"error", err.Error(),
		)

		return nil, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.cfg.MaxRetries+1),
	)
}

func (c *Client) do(ctx context.Context, url string, body []byte) (*Prediction, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	prediction.Text = strings.TrimSpace(prediction.Text)

	return &prediction, nil
}

func sessionOverride(sessionID string) map[string]any {
	if sessionID == "" {
		return nil
	}

	return map[string]any{"sessionId": sessionID}
}
