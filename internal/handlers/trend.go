package handlers

import (
	"net/http"

	trends "furnace_trends"
	"furnace_trends/internal/models"
	"furnace_trends/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Parameter trend
// @Description  Latest reading per day at the given hour for each requested parameter. Parameters may be given by id, name or slug; repeat 'param' or separate with commas.
// @Tags         trend
// @Produce      json
// @Param        start  query   string  false  "First day (YYYY-MM-DD), default today minus trend.lookback_days"  example(2024-02-01)
// @Param        end    query   string  false  "Last day (YYYY-MM-DD), default today"  example(2024-02-19)
// @Param        hour   query   int     false  "Hour of day 0..23, default sampler.hour"  example(6)
// @Param        param  query   []string  false  "Parameters, default trend.default_params"  collectionFormat(multi)
// @Success      200   {object}  furnace_trends.TrendResponse
// @Failure      400   {object}  furnace_trends.ErrorResponse
// @Failure      500   {object}  furnace_trends.ErrorResponse
// @Failure      503   {object}  furnace_trends.ErrorResponse
// @Router       /api/v1/trend [get]
func (h *Handler) getTrend(c *gin.Context) {
	start, end, err := h.dateRange(c, h.opts.TrendStart, h.opts.TrendEnd, h.opts.TrendLookbackDays)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	hour, err := queryHour(c, h.opts.Hour)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	keys := queryParams(c)
	if len(keys) == 0 {
		keys = h.opts.TrendParams
	}
	ids, _, err := resolveParams(h.services.Catalog, keys)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.services.Build(c.Request.Context(), service.Window{
		Start:        start,
		End:          end,
		Hour:         hour,
		ParameterIDs: ids,
	})
	if err != nil {
		h.writeError(c, "trend_build_failed", err, "start", start, "end", end, "hour", hour, "params", ids)
		return
	}

	series := make(map[string][]models.Point, len(res.Series))
	for name, s := range res.Series {
		series[name] = s.Points
	}
	c.JSON(http.StatusOK, trends.TrendResponse{
		RunID:   res.RunID,
		Window:  windowView(res.Window.Start, res.Window.End, res.Window.Hour, h.names(res.Window.ParameterIDs)),
		Series:  series,
		Dropped: res.Dropped,
	})
}

func (h *Handler) names(ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := h.services.Catalog.Name(id); ok {
			out = append(out, name)
		}
	}
	return out
}
