package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrHubBusy is returned when the delivery queue is full.
var ErrHubBusy = errors.New("notification hub is busy")

// Hub keeps every live notification socket, grouped by the user it belongs to.
type Hub struct {
	// Registered clients organized by user ID
	clients map[int64]map[*Client]bool

	// Messages waiting to be pushed
	deliver chan *Message

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Users whose sockets must all be closed
	disconnect chan int64

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Logger for Hub operations
	logger zerolog.Logger
}

// Message is one notification pushed to a user
type Message struct {
	// Type of notification, e.g. "registration_status"
	Type string `json:"type"`

	// Recipient
	UserID int64 `json:"userId"`

	Title string `json:"title"`
	Body  string `json:"body,omitempty"`

	// Client route the notification refers to
	Link string `json:"link,omitempty"`

	// Entity-specific payload
	Data interface{} `json:"data,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		deliver:    make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		disconnect: make(chan int64, 16),
		logger:     logger,
	}
}

// Run handles registrations and deliveries until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case userID := <-h.disconnect:
			h.disconnectUser(userID)

		case message := <-h.deliver:
			h.deliverMessage(message)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.addr).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().
		Int64("userID", client.userID).
		Str("addr", client.addr).
		Msg("Client unregistered")
}

func (h *Hub) disconnectUser(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.clients[userID])
	for client := range h.clients[userID] {
		h.removeLocked(client)
	}
	if n > 0 {
		h.logger.Info().Int64("userID", userID).Int("clients", n).Msg("Disconnected user sockets")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// deliverMessage sends a message to every socket of its recipient
func (h *Hub) deliverMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("userID", message.UserID).
			Msg("Failed to marshal notification")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[message.UserID]
	if !ok {
		h.logger.Debug().
			Int64("userID", message.UserID).
			Msg("No sockets for notification recipient")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow or dead socket
			h.removeLocked(client)
		}
	}
}

// SendToUser queues message for every socket of message.UserID. It never blocks;
// a full queue yields ErrHubBusy.
func (h *Hub) SendToUser(message *Message) error {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	select {
	case h.deliver <- message:
		return nil
	default:
		h.logger.Warn().Int64("userID", message.UserID).Str("type", message.Type).Msg("Notification queue full")
		return ErrHubBusy
	}
}

// DisconnectUser closes every socket of userID, e.g. after sign-out.
func (h *Hub) DisconnectUser(userID int64) {
	select {
	case h.disconnect <- userID:
	default:
		go func() { h.disconnect <- userID }()
	}
}

// ClientCount returns the number of live sockets of userID
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
