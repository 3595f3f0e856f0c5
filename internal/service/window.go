package service

import (
	"fmt"
	"sort"
	"time"

	"furnace_trends/internal/catalog"
)

// Window is the (date range x hour of day) slice the sampler reads.
// Start and End are inclusive calendar dates.
type Window struct {
	Start        time.Time
	End          time.Time
	Hour         int
	ParameterIDs []int
}

// calendarDate keeps the wall-clock date of t and drops the rest.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// normalizeWindow validates w and returns it with dates truncated and
// parameter ids sorted and deduplicated.
func normalizeWindow(w Window, cat *catalog.Catalog) (Window, error) {
	start := calendarDate(w.Start)
	end := calendarDate(w.End)
	if start.After(end) {
		return Window{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	if w.Hour < 0 || w.Hour > 23 {
		return Window{}, fmt.Errorf("%w: got %d", ErrInvalidHour, w.Hour)
	}
	ids, err := normalizeParameterIDs(w.ParameterIDs, cat, false)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: end, Hour: w.Hour, ParameterIDs: ids}, nil
}

// normalizeParameterIDs checks every id against the catalog. With allowEmpty
// an empty list stays empty (meaning "all"); otherwise it is rejected.
func normalizeParameterIDs(in []int, cat *catalog.Catalog, allowEmpty bool) ([]int, error) {
	if len(in) == 0 {
		if allowEmpty {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: no parameters requested", ErrInvalidParameter)
	}
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, id := range in {
		if !cat.Has(id) {
			return nil, fmt.Errorf("%w: %d is not a known tag index", ErrInvalidParameter, id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out, nil
}
