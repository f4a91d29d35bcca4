package websocket

import (
	"context"
	stderrors "errors"
	"time"

	"codeberg.org/kartuli/server/internal/logger"
)

func NewHub() *Hub {
	return &Hub{
		clients:          make(map[string]*Client),
		Register:         make(chan *Client),
		Unregister:       make(chan *Client),
		handlers:         make(map[string]MessageHandler),
		shutdown:         make(chan struct{}),
		done:             make(chan struct{}),
		actorConnections: make(map[string]int),
		ipConnections:    make(map[string]int),
	}
}

// registers a handler for a specific message type
func (h *Hub) RegisterHandler(messageType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[messageType] = handler
}

// starts the hub's main loop
func (h *Hub) Run() {
	h.mu.Lock()
	h.running = true
	h.mu.Unlock()

	defer close(h.done)

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// hands the client to the running hub; false once the hub has stopped
func (h *Hub) Add(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.actorConnections[client.Actor.Key()]++
	h.ipConnections[client.IPAddress]++

	logger.Info("client registered",
		"client_id", client.ID,
		"actor", client.Actor.Key(),
		"ip", client.IPAddress,
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	delete(h.clients, client.ID)
	decrement(h.actorConnections, client.Actor.Key())
	decrement(h.ipConnections, client.IPAddress)

	client.Close()

	logger.Info("client unregistered",
		"client_id", client.ID,
		"actor", client.Actor.Key(),
	)
}

func decrement(counts map[string]int, key string) {
	counts[key]--

	if counts[key] <= 0 {
		delete(counts, key)
	}
}

// routes a client message to its handler, answering errors on the client's behalf
func (h *Hub) Dispatch(client *Client, msg *Message) {
	if msg.Type == TypePing {
		client.Reply(TypePong, msg.ID, nil) //nolint:errcheck,gosec // G104: best effort
		return
	}

	h.mu.RLock()
	handler, ok := h.handlers[msg.Type]
	h.mu.RUnlock()

	if !ok {
		client.SendError(msg.ID, "bad_request", ErrUnknownType.Error(), msg.Type)
		return
	}

	if msg.Type != TypeUsage && !client.checkRateLimit() {
		client.SendError(msg.ID, "rate_limit_exceeded", ErrRateLimitExceeded.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if err := handler(ctx, client, msg); err != nil {
		if stderrors.Is(err, ErrInvalidMessage) {
			client.SendError(msg.ID, "bad_request", err.Error(), nil)
			return
		}

		logger.ErrorErr(err, "websocket handler failed",
			"client_id", client.ID,
			"actor", client.Actor.Key(),
			"type", msg.Type,
		)

		client.SendError(msg.ID, "server_error", "failed to process message", nil)
	}
}

// checks if a new connection should be allowed based on limits
func (h *Hub) CanAcceptConnection(actorKey, ipAddress string) (bool, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.actorConnections[actorKey] >= maxConnectionsPerActor {
		return false, "Maximum connections per account exceeded"
	}

	if h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return false, "Maximum connections per IP address exceeded"
	}

	return true, ""
}

// returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// stops the hub after notifying and closing every client
func (h *Hub) Shutdown() {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()

	if !running {
		return
	}

	select {
	case <-h.shutdown:
	default:
		close(h.shutdown)
	}

	<-h.done
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()

	logger.Info("notifying clients of server shutdown")

	for _, client := range h.clients {
		if err := client.Reply(TypeServerShutdown, "", ServerShutdownPayload{
			Reason: "server is shutting down for maintenance",
		}); err != nil {
			logger.Debug("failed to send shutdown notification",
				"client_id", client.ID,
				"error", err,
			)
		}
	}

	h.mu.Unlock()

	// give clients time to receive the shutdown message
	time.Sleep(500 * time.Millisecond)

	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing all websocket connections")

	for _, client := range h.clients {
		client.Close()
	}

	h.clients = make(map[string]*Client)
	h.actorConnections = make(map[string]int)
	h.ipConnections = make(map[string]int)
	h.running = false
}
