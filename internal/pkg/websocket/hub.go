package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
)

const (
	// MessageTypeReview carries a models.ReviewEvent
	MessageTypeReview = "review"

	// MessageTypeHello is sent once after a client connects
	MessageTypeHello = "hello"

	deliveryBuffer = 256
)

// Hub maintains the set of connected feed clients and routes review events
// to the clients of each recipient.
type Hub struct {
	// Registered clients organized by subject ID
	clients map[string]map[*Client]bool

	// Events waiting to be routed
	deliver chan *models.ReviewEvent

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Mutex for event listeners
	listenersMu sync.RWMutex

	// In-process event listeners
	listeners []chan models.ReviewEvent

	// Logger for Hub operations
	logger zerolog.Logger
}

// Message is the envelope written to feed clients
type Message struct {
	Type      string              `json:"type"`
	Event     *models.ReviewEvent `json:"event,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		deliver:    make(chan *models.ReviewEvent, deliveryBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run handles client registrations and event delivery until ctx is done.
// Every client still connected at that point is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.deliver:
			h.route(event)
		}
	}
}

// PublishReviewEvent queues an event for delivery. It never blocks the
// caller: when the queue is full the event is dropped from the live feed.
func (h *Hub) PublishReviewEvent(ctx context.Context, event models.ReviewEvent) {
	select {
	case h.deliver <- &event:
	case <-ctx.Done():
	default:
		h.logger.Warn().
			Str("achievementID", event.AchievementID).
			Str("type", string(event.Type)).
			Msg("Feed queue full, dropping review event")
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.subjectID]; !ok {
		h.clients[client.subjectID] = make(map[*Client]bool)
	}
	h.clients[client.subjectID][client] = true

	h.logger.Info().
		Str("subjectID", client.subjectID).
		Str("role", client.role).
		Str("addr", client.remoteAddr()).
		Msg("Feed client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

func (h *Hub) dropLocked(client *Client) {
	set, ok := h.clients[client.subjectID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.subjectID)
	}

	h.logger.Info().
		Str("subjectID", client.subjectID).
		Str("addr", client.remoteAddr()).
		Msg("Feed client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for client := range set {
			h.dropLocked(client)
		}
	}
}

// route notifies listeners, then writes the event to every client of every
// recipient. A client whose buffer is full is disconnected.
func (h *Hub) route(event *models.ReviewEvent) {
	h.notifyListeners(*event)

	data, err := json.Marshal(Message{Type: MessageTypeReview, Event: event, Timestamp: event.OccurredAt})
	if err != nil {
		h.logger.Error().Err(err).Str("achievementID", event.AchievementID).Msg("Failed to marshal review event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, subjectID := range event.Recipients {
		for client := range h.clients[subjectID] {
			select {
			case client.send <- data:
				delivered++
			default:
				h.dropLocked(client)
			}
		}
	}

	h.logger.Debug().
		Str("achievementID", event.AchievementID).
		Int("clientCount", delivered).
		Msg("Review event delivered")
}

// notifyListeners sends the event to every registered listener
func (h *Hub) notifyListeners(event models.ReviewEvent) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.listeners {
		// Use non-blocking send to avoid blocking on slow listeners
		select {
		case listener <- event:
		default:
			h.logger.Warn().Msg("Skipped slow event listener")
		}
	}
}

// ClientCount returns the number of connected clients of a subject
func (h *Hub) ClientCount(subjectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[subjectID])
}

// AddListener registers a channel that receives every routed event
func (h *Hub) AddListener(listener chan models.ReviewEvent) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, listener)
}

// RemoveListener removes a listener from the hub
func (h *Hub) RemoveListener(listener chan models.ReviewEvent) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.listeners {
		if l == listener {
			h.listeners[i] = h.listeners[len(h.listeners)-1]
			h.listeners = h.listeners[:len(h.listeners)-1]
			break
		}
	}
}
