package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/events
// Streams the session's lifecycle transitions. Both panels are sent once on
// connect so a reconnecting page is never stale.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	d, ok := sessionDashboard(c)
	if !ok {
		return
	}
	client := h.hub.Subscribe(d.ID())
	defer h.hub.Close(client)

	for _, msg := range []realtime.Message{
		{Channel: d.ID(), Event: realtime.EventSingle, Data: d.ResultPanel()},
		{Channel: d.ID(), Event: realtime.EventBatch, Data: d.BatchPanel()},
	} {
		select {
		case client.Outbound <- msg:
		default:
		}
	}

	h.log.Debug("SSE stream open", "session_id", d.ID(), "client_id", client.ID)
	h.hub.Serve(c.Writer, c.Request, client)
	h.log.Debug("SSE stream closed", "session_id", d.ID(), "client_id", client.ID)
}
