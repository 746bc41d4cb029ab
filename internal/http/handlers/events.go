package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lexgraph-backend/internal/http/response"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/realtime"
	"github.com/yungbote/lexgraph-backend/internal/realtime/bus"
)

const (
	eventBuffer       = 64
	heartbeatInterval = 15 * time.Second
)

// EventsHandler streams committed graph version changes as server-sent events.
type EventsHandler struct {
	log    *logger.Logger
	events bus.Bus
}

func NewEventsHandler(log *logger.Logger, events bus.Bus) *EventsHandler {
	return &EventsHandler{log: log.With("handler", "EventsHandler"), events: events}
}

// GET /api/graph/events?entity_type=TEMPLATE
func (h *EventsHandler) Stream(c *gin.Context) {
	entityType := strings.ToUpper(strings.TrimSpace(c.Query("entity_type")))
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.RespondError(c, http.StatusInternalServerError, "streaming_unsupported", fmt.Errorf("response writer cannot flush"))
		return
	}

	ctx := c.Request.Context()
	out := make(chan realtime.GraphEvent, eventBuffer)
	err := h.events.StartForwarder(ctx, func(ev realtime.GraphEvent) {
		if entityType != "" && ev.EntityType != entityType {
			return
		}
		select {
		case out <- ev:
		default:
			h.log.Warn("dropping graph event; subscriber buffer full", "event", ev.Event, "entity_id", ev.EntityID)
		}
	})
	if err != nil {
		response.RespondError(c, http.StatusServiceUnavailable, "event_bus_unavailable", err)
		return
	}

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	// The subscription is live once the client sees this.
	_, _ = fmt.Fprint(w, ": subscribed\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev := <-out:
			raw, err := json.Marshal(ev)
			if err != nil {
				h.log.Warn("failed to marshal graph event", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, raw)
			flusher.Flush()
		}
	}
}
