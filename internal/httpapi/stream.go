package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Homoney/watch-collection-tracker/internal/logging"
)

const (
	streamInterval   = time.Second
	streamWriteWait  = 5 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 45 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 512,
}

// atomicTimeStream pushes the reference clock over a websocket once per
// second. The remote time source is consulted once at connect to establish an
// offset against the local clock; each tick advances that fix locally rather
// than hammering the external API.
func (h *Handler) atomicTimeStream(w http.ResponseWriter, r *http.Request) {
	tz := r.URL.Query().Get("tz")
	if tz == "" {
		tz = "UTC"
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.L(r.Context()).Warn("websocket upgrade failed", logging.ErrAttr(err))
		return
	}
	defer conn.Close()

	reference, isAtomic := h.time.Now(r.Context(), tz)
	fixedAt := h.clk.Now()

	// Reader goroutine: consume control frames, detect client close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()
	pinger := time.NewTicker(streamPingPeriod)
	defer pinger.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-pinger.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ticker.C:
			current := reference.Add(h.clk.Since(fixedAt))
			payload := atomicTimeResponse{
				CurrentTime:    current,
				IsAtomicSource: isAtomic,
				Timezone:       tz,
				UnixTimestamp:  float64(current.UnixNano()) / float64(time.Second),
			}

			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(payload); err != nil {
				return
			}
		}
	}
}
