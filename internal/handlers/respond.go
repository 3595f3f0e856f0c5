package handlers

import (
	"errors"
	"net/http"

	trends "furnace_trends"
	"furnace_trends/internal/catalog"
	"furnace_trends/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errSourceUnavailable = "data source unavailable"
	errCatalogDrift      = "source data references a parameter missing from the catalog"
	errInternal          = "internal error"
)

// badRequest replies 400 with msg.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, trends.ErrorResponse{Error: msg})
}

// statusOf maps pipeline errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case service.IsCallerError(err), errors.Is(err, catalog.ErrUnknownKey):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDataSourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is what a client may see of err. Only caller errors carry
// their own text.
func publicMessage(err error) string {
	switch {
	case statusOf(err) == http.StatusBadRequest:
		return err.Error()
	case errors.Is(err, service.ErrDataSourceUnavailable):
		return errSourceUnavailable
	case errors.Is(err, service.ErrUnknownParameter):
		return errCatalogDrift
	default:
		return errInternal
	}
}

// writeError replies with the mapped status; server side failures are logged.
func (h *Handler) writeError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		h.logError(c, logKey, err, kv...)
	}
	c.JSON(code, trends.ErrorResponse{Error: publicMessage(err)})
}

func (h *Handler) logError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	fields := append([]interface{}{"err", err, "request_id", c.GetString(ctxRequestID)}, kv...)
	h.log.Errorw(logKey, fields...)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
