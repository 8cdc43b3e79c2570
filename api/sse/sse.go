// Package sse streams live panel activity to staff browsers.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/osupanel/cache"
	"github.com/kasuganosora/osupanel/notify"
	"github.com/kasuganosora/osupanel/stats"
	"go.uber.org/zap"
)

const defaultKeepalive = 30 * time.Second

// Handler serves the event stream. Every message the panel publishes to
// Bancho is relayed as a "notify" event, and the latest online-user sample
// is sent as an "online" event whenever it changes.
type Handler struct {
	pubsub    cache.PubSub
	ring      *stats.Ring
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(pubsub cache.PubSub, ring *stats.Ring, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, ring: ring, keepalive: defaultKeepalive, logger: logger}
}

// WithKeepalive overrides the keepalive interval.
func (h *Handler) WithKeepalive(d time.Duration) *Handler {
	if d > 0 {
		h.keepalive = d
	}
	return h
}

type notifyEvent struct {
	Channel string `json:"channel"`
	Payload string `json:"payload"`
}

// ServeEvents handles GET /api/events. Authentication and privilege checks
// are done by the route's middleware.
func (h *Handler) ServeEvents(c *gin.Context) {
	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, notify.Channels()...)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	var last stats.Sample
	last, _ = h.writeOnline(c, last)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			data, _ := json.Marshal(notifyEvent{Channel: msg.Channel, Payload: msg.Payload})
			fmt.Fprintf(c.Writer, "event: notify\ndata: %s\n\n", data)
			c.Writer.Flush()

		case <-ticker.C:
			var sent bool
			last, sent = h.writeOnline(c, last)
			if !sent {
				// Keepalive comment to prevent proxy timeouts.
				fmt.Fprintf(c.Writer, ": keepalive\n\n")
			}
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}

// writeOnline emits the newest sample if it differs from last.
func (h *Handler) writeOnline(c *gin.Context, last stats.Sample) (stats.Sample, bool) {
	snap := h.ring.Snapshot()
	if len(snap) == 0 {
		return last, false
	}
	cur := snap[len(snap)-1]
	if cur.Time.Equal(last.Time) {
		return last, false
	}
	data, _ := json.Marshal(cur)
	fmt.Fprintf(c.Writer, "event: online\ndata: %s\n\n", data)
	return cur, true
}
