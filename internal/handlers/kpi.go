package handlers

import (
	"net/http"

	trends "furnace_trends"
	"furnace_trends/internal/service"

	"github.com/gin-gonic/gin"
)

// kpiRequest reads the KPI window from the query; defaults to the last
// kpi.lookback_days days at the configured hour.
func (h *Handler) kpiRequest(c *gin.Context) (service.KPIRequest, error) {
	start, end, err := h.dateRange(c, timeZero, timeZero, h.opts.KPILookbackDays)
	if err != nil {
		return service.KPIRequest{}, err
	}
	hour, err := queryHour(c, h.opts.Hour)
	if err != nil {
		return service.KPIRequest{}, err
	}
	return service.KPIRequest{Start: start, End: end, Hour: hour}, nil
}

func kpiResponse(res service.KPIResult) trends.KPIResponse {
	return trends.KPIResponse{
		RunID:   res.RunID,
		Window:  windowView(res.Window.Start, res.Window.End, res.Window.Hour, nil),
		Panels:  res.Panels,
		Dropped: res.Dropped,
	}
}

// @Summary      KPI panels
// @Description  One panel per catalog parameter with its daily series, min, max and a padded y-range.
// @Tags         kpi
// @Produce      json
// @Param        start  query   string  false  "First day (YYYY-MM-DD), default today minus kpi.lookback_days"
// @Param        end    query   string  false  "Last day (YYYY-MM-DD), default today"
// @Param        hour   query   int     false  "Hour of day 0..23, default sampler.hour"
// @Success      200   {object}  furnace_trends.KPIResponse
// @Failure      400   {object}  furnace_trends.ErrorResponse
// @Failure      500   {object}  furnace_trends.ErrorResponse
// @Failure      503   {object}  furnace_trends.ErrorResponse
// @Router       /api/v1/kpi [get]
func (h *Handler) getKPI(c *gin.Context) {
	req, err := h.kpiRequest(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.services.Panels(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, "kpi_build_failed", err, "start", req.Start, "end", req.End, "hour", req.Hour)
		return
	}
	c.JSON(http.StatusOK, kpiResponse(res))
}
