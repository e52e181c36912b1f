package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/myinsta/portfolio-backend/internal/apperr"
)

// stream serves a project's comment changes as Server-Sent Events: one
// "ready" event once subscribed, then "insert"/"delete" events, with
// keep-alive comments in between.
func (h *Handler) stream(c *gin.Context) {
	ctx := c.Request.Context()

	sub, projectID, err := h.svc.Subscribe(ctx, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	defer sub.Close()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		apperr.Respond(c, apperr.Internal(fmt.Errorf("streaming unsupported")))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
	c.Status(http.StatusOK)

	ready, _ := json.Marshal(gin.H{"project_id": projectID})
	writeEvent(c.Writer, "ready", ready)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	log := zerolog.Ctx(ctx)
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case payload, ok := <-sub.C:
			if !ok {
				log.Warn().Str("project_id", projectID).Msg("comment feed closed by broker")
				return
			}
			writeEvent(c.Writer, eventName(payload), payload)
			flusher.Flush()
		}
	}
}

// eventName derives the SSE event name from the payload's "type" field.
func eventName(payload []byte) string {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.Type == "" {
		return "message"
	}
	return strings.ToLower(head.Type)
}

// writeEvent frames data as one SSE event. Multi-line data is split across
// data: lines.
func writeEvent(w io.Writer, event string, data []byte) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(string(data), "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}
