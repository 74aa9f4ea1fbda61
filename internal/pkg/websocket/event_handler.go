package websocket

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
)

const listenerBuffer = 64

// Invalidator drops cached rollups affected by a review event.
type Invalidator interface {
	InvalidateEvent(ctx context.Context, event models.ReviewEvent)
}

// EventHandler consumes routed review events in-process and keeps the
// analytics cache in step with the lifecycle.
type EventHandler struct {
	hub         *Hub
	invalidator Invalidator
	logger      zerolog.Logger
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(hub *Hub, invalidator Invalidator, logger zerolog.Logger) *EventHandler {
	return &EventHandler{hub: hub, invalidator: invalidator, logger: logger}
}

// Start begins processing events until ctx is done
func (h *EventHandler) Start(ctx context.Context) {
	events := make(chan models.ReviewEvent, listenerBuffer)
	h.hub.AddListener(events)
	go func() {
		defer h.hub.RemoveListener(events)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-events:
				h.handle(ctx, event)
			}
		}
	}()
}

func (h *EventHandler) handle(ctx context.Context, event models.ReviewEvent) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	h.invalidator.InvalidateEvent(ctx, event)
	h.logger.Debug().
		Str("achievementID", event.AchievementID).
		Str("studentID", event.StudentID).
		Msg("Analytics invalidated for review event")
}
