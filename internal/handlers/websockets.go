package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ohms_lab/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 250 * time.Millisecond
	minInterval      = 50 * time.Millisecond
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000

	wsTypeState = "state"
	wsTypeError = "error"
)

// wsEnvelope is the frame for every WebSocket message.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Stream session state
// @Description  WebSocket. Sends {"type":"state","data":<snapshot>} on connect and then every interval. The short-circuit countdown and fuse blow show up here without polling.
// @Tags         session
// @Param        token        query  string  true   "Session token"
// @Param        interval     query  string  false  "Go duration, 50ms..10s"  example(250ms)
// @Param        interval_ms  query  int     false  "Milliseconds, 50..10000"  example(250)
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	sid := sessionID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err, "session_id", sid)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	if err := h.sendState(ctx, conn, sid); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err, "session_id", sid)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err, "session_id", sid)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendState(ctx, conn, sid); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err, "session_id", sid)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=250ms or ?interval_ms=250 within [minInterval, maxInterval].
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= minInterval && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v <= maxIntervalMilli {
			if d := time.Duration(v) * time.Millisecond; d >= minInterval {
				return d
			}
		}
	}

	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// sendState writes the current snapshot. When the session is gone it writes an
// error frame and returns the error so the caller closes the connection.
func (h *Handler) sendState(ctx context.Context, conn *websocket.Conn, sid string) error {
	snap, err := h.services.Snapshot(ctx, sid)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err != nil {
		msg := errInternal
		if errors.Is(err, service.ErrSessionNotFound) {
			msg = errSessionExpired
		}
		_ = conn.WriteJSON(wsEnvelope{Type: wsTypeError, Error: msg})
		return err
	}
	return conn.WriteJSON(wsEnvelope{Type: wsTypeState, Data: snap})
}
