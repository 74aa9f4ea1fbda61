package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vicky2929-er/student-smart-hub-sub002/internal/app/models"
)

type recordingInvalidator struct {
	events chan models.ReviewEvent
}

func (r *recordingInvalidator) InvalidateEvent(_ context.Context, event models.ReviewEvent) {
	r.events <- event
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data, ok := <-c.Messages():
		require.True(t, ok, "client channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
	return Message{}
}

func TestHubRoutesToRecipients(t *testing.T) {
	hub, _ := startHub(t)

	student := NewClient(hub, nil, "s1", "student", zerolog.Nop())
	coordinator := NewClient(hub, nil, "f1", "faculty", zerolog.Nop())
	other := NewClient(hub, nil, "f9", "faculty", zerolog.Nop())
	for _, c := range []*Client{student, coordinator, other} {
		require.True(t, hub.Register(c))
	}

	hub.PublishReviewEvent(context.Background(), models.ReviewEvent{
		Type:          models.EventAchievementReviewed,
		Recipients:    []string{"s1", "f1"},
		StudentID:     "s1",
		AchievementID: "a1",
		Status:        models.AchievementApproved,
	})

	for _, c := range []*Client{student, coordinator} {
		msg := receive(t, c)
		assert.Equal(t, MessageTypeReview, msg.Type)
		require.NotNil(t, msg.Event)
		assert.Equal(t, "a1", msg.Event.AchievementID)
		assert.Empty(t, msg.Event.Recipients)
	}
	assert.Empty(t, other.Messages())
}

func TestHubNotifiesListeners(t *testing.T) {
	hub, _ := startHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inv := &recordingInvalidator{events: make(chan models.ReviewEvent, 1)}
	NewEventHandler(hub, inv, zerolog.Nop()).Start(ctx)
	require.Eventually(t, func() bool {
		hub.listenersMu.RLock()
		defer hub.listenersMu.RUnlock()
		return len(hub.listeners) == 1
	}, time.Second, 10*time.Millisecond)

	hub.PublishReviewEvent(context.Background(), models.ReviewEvent{StudentID: "s1", AchievementID: "a2"})

	select {
	case event := <-inv.events:
		assert.Equal(t, "a2", event.AchievementID)
	case <-time.After(2 * time.Second):
		t.Fatal("listener not notified")
	}
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	hub, cancel := startHub(t)
	client := NewClient(hub, nil, "s1", "student", zerolog.Nop())
	require.True(t, hub.Register(client))
	assert.Eventually(t, func() bool { return hub.ClientCount("s1") == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case _, ok := <-client.Messages():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed")
	}

	assert.False(t, hub.Register(NewClient(hub, nil, "s2", "student", zerolog.Nop())))
	hub.Unregister(client)
}
