package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/web/view"
)

// BoardHTMLEvent is the SSE event name carrying a rendered board fragment
const BoardHTMLEvent = "board-html"

// EventData represents SSE event data
type EventData struct {
	EventName string
	Data      string
}

// Renderer converts model events to SSE frames
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderEvent returns the frames for one event: the JSON encoded event under
// its own type, plus an out-of-band board fragment for board states
func (r *Renderer) RenderEvent(ctx context.Context, event model.Event) ([]EventData, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", event.Type, err)
	}
	events := []EventData{{EventName: string(event.Type), Data: string(data)}}

	if event.Type != model.EventBoardState || event.GameID == "" {
		return events, nil
	}
	payload, ok := event.Payload.(model.BoardStatePayload)
	if !ok {
		return events, nil
	}
	var buf bytes.Buffer
	if err := view.Board(event.GameID, payload.State).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("rendering board: %w", err)
	}
	return append(events, EventData{
		EventName: BoardHTMLEvent,
		Data:      WrapForOOBSwap(view.BoardID(event.GameID), buf.String()),
	}), nil
}

// WrapForOOBSwap wraps HTML in a div with hx-swap-oob for out-of-band swaps
func WrapForOOBSwap(id, html string) string {
	return `<div id="` + id + `" hx-swap-oob="true">` + html + `</div>`
}
