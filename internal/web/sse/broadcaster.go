package sse

import (
	"context"
	"log/slog"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/game"
)

// Ensure Broadcaster can receive session and room events
var _ game.EventSink = (*Broadcaster)(nil)

// Broadcaster forwards published events to the hub of their topic
type Broadcaster struct {
	hubManager *HubManager
	renderer   *Renderer
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		renderer:   NewRenderer(),
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish implements game.EventSink. Room events go to the room topic and
// session events to the game topic. Topics without subscribers are skipped.
func (b *Broadcaster) Publish(event model.Event) {
	topic := GameTopic(event.GameID)
	if event.RoomID != "" {
		topic = RoomTopic(event.RoomID)
	}
	hub := b.hubManager.GetHub(topic)
	if hub == nil {
		return
	}

	frames, err := b.renderer.RenderEvent(context.Background(), event)
	if err != nil {
		b.logger.Error("sse failed to render event",
			slog.String("topic", string(topic)),
			slog.String("type", string(event.Type)),
			slog.Any("error", err))
		return
	}
	for _, f := range frames {
		hub.BroadcastEvent(f.EventName, f.Data)
	}
}
