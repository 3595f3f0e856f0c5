package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	trends "furnace_trends"
	"furnace_trends/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid  = "invalid 'from' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errToInvalid    = "invalid 'to' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errOrderInvalid = "invalid 'order'; use asc or desc"
	errLimitInvalid = "invalid 'limit'; use a positive integer"

	orderAsc  = "asc"
	orderDesc = "desc"
)

// @Summary      Raw readings
// @Description  Stored readings between 'from' and 'to', rounded to two places. A date-only 'to' covers the whole day. Unreadable values are null.
// @Tags         readings
// @Produce      json
// @Param        from   query   string  false  "Start (RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'), default 'to' minus report.lookback_days"  example(2024-02-01)
// @Param        to     query   string  false  "End, default now. Date-only treated as end of day."  example(2024-02-01)
// @Param        param  query   []string  false  "Parameters (id, name or slug), default all"  collectionFormat(multi)
// @Param        order  query   string  false  "Sort by timestamp"  Enums(asc,desc)  default(desc)
// @Param        limit  query   int     false  "Row cap, bounded by report.max_rows"
// @Success      200   {object}  furnace_trends.ReadingsResponse
// @Failure      400   {object}  furnace_trends.ErrorResponse
// @Failure      500   {object}  furnace_trends.ErrorResponse
// @Failure      503   {object}  furnace_trends.ErrorResponse
// @Router       /api/v1/readings [get]
func (h *Handler) getReadings(c *gin.Context) {
	var (
		from time.Time
		to   time.Time
		err  error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			badRequest(c, errFromInvalid)
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			badRequest(c, errToInvalid)
			return
		}
		// If the user didn't include a time component, treat "to" as the end of that day.
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if to.IsZero() {
		to = h.opts.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -h.opts.ReportLookbackDays)
	}

	newestFirst := true
	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("order", orderDesc))) {
	case orderDesc:
	case orderAsc:
		newestFirst = false
	default:
		badRequest(c, errOrderInvalid)
		return
	}

	limit := 0
	if qs := c.Query("limit"); qs != "" {
		limit, err = strconv.Atoi(qs)
		if err != nil || limit <= 0 {
			badRequest(c, errLimitInvalid)
			return
		}
	}

	ids, _, err := resolveParams(h.services.Catalog, queryParams(c))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.services.Readings(c.Request.Context(), service.ReportFilter{
		From:         from,
		To:           to,
		ParameterIDs: ids,
		NewestFirst:  newestFirst,
		Limit:        limit,
	})
	if err != nil {
		h.writeError(c, "readings_list_failed", err, "from", from, "to", to, "params", ids)
		return
	}
	c.JSON(http.StatusOK, trends.ReadingsResponse{
		Count:    len(res.Rows),
		Limit:    res.Limit,
		Dropped:  res.Dropped,
		Readings: res.Rows,
	})
}
