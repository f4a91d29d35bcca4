package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"codeberg.org/kartuli/server/internal/quota"
)

// message type constants for websocket communication
const (
	// is sent by clients with a chat message
	TypeChat = "chat"

	// is sent by clients asking for an image
	TypeImage = "image"

	// is sent by clients polling their quota
	TypeUsage = "usage"

	// is sent by server with the assistant's answer
	TypeChatReply = "chat_reply"

	// is sent by server with generated images
	TypeImageReply = "image_reply"

	// is sent by server with current usage and limits
	TypeUsageState = "usage_state"

	// is sent when an error occurs
	TypeError = "error"

	// is sent by clients to keep the connection alive
	TypePing = "ping"

	// is sent by server in response to ping
	TypePong = "pong"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	// metered requests (chat, image) per client per minute
	maxRequestsPerMinute = 20

	// frames of any type per client per second
	maxMessagesPerSecond = 10

	// dispatches a single client may have running at once
	maxInFlightPerClient = 4

	// upper bound for a single handler, generation included
	handlerTimeout = 2 * time.Minute

	// connection limits
	maxConnectionsPerActor = 5
	maxConnectionsPerIP    = 10
)

var (
	ErrInvalidMessage    = errors.New("invalid message format")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrTooManyInFlight   = errors.New("too many requests in progress")
	ErrUnknownType       = errors.New("unknown message type")
)

// a single frame exchanged with the client; ID echoes the client's request id
type Message struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// a websocket connection bound to the actor it meters against
type Client struct {
	ID        string
	Actor     quota.Actor
	IPAddress string

	conn *websocket.Conn
	hub  *Hub
	send chan []byte

	mu     sync.RWMutex
	closed bool

	requestTimestamps []time.Time
	messageTimestamps []time.Time

	inflight chan struct{}
}

// processes one message type for a client
type MessageHandler func(ctx context.Context, client *Client, msg *Message) error

// tracks connections and routes client messages to handlers
type Hub struct {
	clients map[string]*Client

	Register   chan *Client
	Unregister chan *Client

	mu       sync.RWMutex
	handlers map[string]MessageHandler

	running  bool
	shutdown chan struct{}
	done     chan struct{}

	actorConnections map[string]int
	ipConnections    map[string]int
}
