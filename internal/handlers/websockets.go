package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"furnace_trends/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	msgTypeKPI   = "kpi"
	msgTypeError = "error"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Dashboards are served from other origins; there are no credentials to protect.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Live KPI panels
// @Description  Upgrades to a WebSocket and pushes {"type":"kpi","data":KPIResponse} immediately and then every interval. Accepts the /api/v1/kpi query plus interval (Go duration) or interval_ms.
// @Tags         kpi
// @Param        interval     query  string  false  "Push period, e.g. 30s"
// @Param        interval_ms  query  int     false  "Push period in milliseconds"
// @Router       /ws/kpi [get]
func (h *Handler) wsKPI(c *gin.Context) {
	// reject a malformed window before upgrading so the caller gets a 400
	if _, err := h.kpiRequest(c); err != nil {
		badRequest(c, err.Error())
		return
	}
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	if err := h.sendPanels(ctx, c, conn); err != nil {
		h.log.Infow("ws_write_failed_initial", "err", err)
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
				h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := h.sendPanels(ctx, c, conn); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 bounded by the
// configured maximum; anything else falls back to the default.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= h.opts.WSMaxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			if d := time.Duration(v) * time.Millisecond; d <= h.opts.WSMaxInterval {
				return d
			}
		}
	}

	return h.opts.WSDefaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}

// sendPanels runs one KPI pipeline for the current window and writes it.
// A failed run is reported to the client as an error envelope and the
// stream continues; only write failures end it.
func (h *Handler) sendPanels(ctx context.Context, c *gin.Context, conn *websocket.Conn) error {
	msg := wsEnvelope{Type: msgTypeKPI}
	req, err := h.kpiRequest(c)
	if err == nil {
		var res service.KPIResult
		res, err = h.services.Panels(ctx, req)
		if err == nil {
			msg.Data = kpiResponse(res)
		}
	}
	if err != nil {
		h.log.Errorw("ws_kpi_failed", "err", err, "request_id", c.GetString(ctxRequestID))
		msg = wsEnvelope{Type: msgTypeError, Error: publicMessage(err)}
	}
	return h.writeEnvelope(conn, msg)
}

func (h *Handler) writeEnvelope(conn *websocket.Conn, msg wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
