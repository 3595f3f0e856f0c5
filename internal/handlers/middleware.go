package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "requestId"
	maxRequestIDLen = 128
)

// requestIDMiddleware keeps a caller supplied X-Request-ID or assigns one.
func (h *Handler) requestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(headerRequestID)
	if id == "" || len(id) > maxRequestIDLen {
		id = uuid.NewString()
	}
	c.Set(ctxRequestID, id)
	c.Header(headerRequestID, id)
	c.Next()
}

func (h *Handler) accessLogMiddleware(c *gin.Context) {
	started := time.Now()
	c.Next()

	status := c.Writer.Status()
	kv := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"latency", time.Since(started),
		"request_id", c.GetString(ctxRequestID),
	}
	if status >= 500 {
		h.log.Warnw("http_request", kv...)
		return
	}
	h.log.Debugw("http_request", kv...)
}
