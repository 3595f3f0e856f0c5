package handlers

import (
	"net/http"

	trends "furnace_trends"

	"github.com/gin-gonic/gin"
)

// @Summary      List parameters
// @Description  The parameter catalog ordered by tag index.
// @Tags         parameters
// @Produce      json
// @Success      200  {object}  furnace_trends.ParametersResponse
// @Router       /api/v1/parameters [get]
func (h *Handler) listParameters(c *gin.Context) {
	entries := h.services.Catalog.Entries()
	c.JSON(http.StatusOK, trends.ParametersResponse{
		Count:      len(entries),
		Parameters: entries,
	})
}
