package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	trends "furnace_trends"
	"furnace_trends/internal/catalog"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// timeZero stands for "no configured default".
var timeZero time.Time

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2024-02-01T06:00:00Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}

// queryDate reads a calendar date parameter. Missing means zero time.
func queryDate(c *gin.Context, key string) (time.Time, error) {
	qs := strings.TrimSpace(c.Query(key))
	if qs == "" {
		return time.Time{}, nil
	}
	t, err := parseQueryTime(qs)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid '%s' date; use YYYY-MM-DD", key)
	}
	return t, nil
}

// queryHour reads ?hour=, falling back to def. The range itself is
// checked by the service.
func queryHour(c *gin.Context, def int) (int, error) {
	qs := strings.TrimSpace(c.Query("hour"))
	if qs == "" {
		return def, nil
	}
	hour, err := strconv.Atoi(qs)
	if err != nil {
		return 0, fmt.Errorf("invalid 'hour' %q; use an integer 0..23", qs)
	}
	return hour, nil
}

// dateRange resolves ?start=&end= with the given defaults. A missing end is
// today, a missing start is end minus lookbackDays.
func (h *Handler) dateRange(c *gin.Context, defStart, defEnd time.Time, lookbackDays int) (time.Time, time.Time, error) {
	start, err := queryDate(c, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := queryDate(c, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.IsZero() {
		end = defEnd
	}
	if end.IsZero() {
		end = h.today()
	}
	if start.IsZero() {
		start = defStart
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -lookbackDays)
	}
	return start, end, nil
}

// queryParams collects repeated ?param= values; each may also be a comma
// separated list.
func queryParams(c *gin.Context) []string {
	var out []string
	for _, v := range c.QueryArray("param") {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// resolveParams turns ids, names or slugs into catalog entries.
func resolveParams(cat *catalog.Catalog, keys []string) ([]int, []string, error) {
	ids := make([]int, 0, len(keys))
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		e, err := cat.Resolve(k)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, e.ID)
		names = append(names, e.Name)
	}
	return ids, names, nil
}

func windowView(start, end time.Time, hour int, names []string) trends.WindowView {
	return trends.WindowView{
		Start:      start.Format(layoutDate),
		End:        end.Format(layoutDate),
		Hour:       hour,
		Parameters: names,
	}
}
