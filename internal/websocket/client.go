package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/kartuli/server/internal/logger"
	"codeberg.org/kartuli/server/internal/quota"
)

// creates a new websocket client connection
func NewClient(id string, actor quota.Actor, ipAddress string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:                id,
		Actor:             actor,
		IPAddress:         ipAddress,
		conn:              conn,
		hub:               hub,
		send:              make(chan []byte, 64),
		requestTimestamps: make([]time.Time, 0, maxRequestsPerMinute),
		messageTimestamps: make([]time.Time, 0, maxMessagesPerSecond),
		inflight:          make(chan struct{}, maxInFlightPerClient),
	}
}

// reads messages from the websocket connection and dispatches them through the hub
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
		}

		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error",
					"client_id", c.ID,
					"actor", c.Actor.Key(),
					"error", err,
				)
			}

			break
		}

		c.handleFrame(messageBytes)
	}
}

// decodes one frame and dispatches it in the background, subject to the
// per-second frame limit and the in-flight cap
func (c *Client) handleFrame(messageBytes []byte) {
	var msg Message
	if err := json.Unmarshal(messageBytes, &msg); err != nil || msg.Type == "" {
		c.SendError("", "bad_request", ErrInvalidMessage.Error(), nil)
		return
	}

	msg.Timestamp = time.Now()

	if !c.checkMessageRateLimit() {
		c.SendError(msg.ID, "rate_limit_exceeded", ErrRateLimitExceeded.Error(), nil)
		return
	}

	select {
	case c.inflight <- struct{}{}:
	default:
		c.SendError(msg.ID, "rate_limit_exceeded", ErrTooManyInFlight.Error(), nil)
		return
	}

	// generation can take a while; the read loop stays responsive to pings
	go func() {
		defer func() { <-c.inflight }()
		c.hub.Dispatch(c, &msg)
	}()
}

// writes queued messages to the websocket connection and keeps it alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing

			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// queues a message for the client
func (c *Client) Send(msg *Message) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		logger.Warn("websocket send buffer full, dropping client",
			"client_id", c.ID,
			"actor", c.Actor.Key(),
		)

		go c.Close()
		return ErrConnectionClosed
	}
}

// builds and queues a typed reply to the request with the given id
func (c *Client) Reply(msgType, id string, payload any) error {
	msg, err := NewMessage(msgType, id, payload)
	if err != nil {
		return err
	}

	return c.Send(msg)
}

// sends an error message to the client
func (c *Client) SendError(id, code, message string, details any) {
	if err := c.Reply(TypeError, id, ErrorPayload{
		Error:   code,
		Message: message,
		Details: details,
	}); err != nil {
		logger.Debug("failed to send error message",
			"client_id", c.ID,
			"error_code", code,
			"error", err,
		)
	}
}

// closes the client's send channel, ending WritePump
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// checks if the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}

// sliding one-minute window over metered requests
func (c *Client) checkRateLimit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	oneMinuteAgo := now.Add(-1 * time.Minute)

	validTimestamps := make([]time.Time, 0, maxRequestsPerMinute)
	for _, ts := range c.requestTimestamps {
		if ts.After(oneMinuteAgo) {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	c.requestTimestamps = validTimestamps

	if len(c.requestTimestamps) >= maxRequestsPerMinute {
		return false
	}

	c.requestTimestamps = append(c.requestTimestamps, now)
	return true
}

// sliding one-second window over every incoming frame
func (c *Client) checkMessageRateLimit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	oneSecondAgo := now.Add(-1 * time.Second)

	validTimestamps := make([]time.Time, 0, maxMessagesPerSecond)
	for _, ts := range c.messageTimestamps {
		if ts.After(oneSecondAgo) {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	c.messageTimestamps = validTimestamps

	if len(c.messageTimestamps) >= maxMessagesPerSecond {
		return false
	}

	c.messageTimestamps = append(c.messageTimestamps, now)
	return true
}
