package service

import (
	"fmt"
	"sort"

	"furnace_trends/internal/catalog"
	"furnace_trends/internal/models"
)

// Assemble turns sampled points into one series per parameter name.
//
// Every point must reference a catalog parameter, otherwise
// ErrUnknownParameter is returned; the catalog and the source have
// drifted apart. Points that fail validPoint are dropped silently and
// only counted. Parameters without surviving points get no entry.
func Assemble(points []models.SampledPoint, cat *catalog.Catalog) (map[string]models.Series, int, error) {
	groups := make(map[int]*models.Series)
	dropped := 0

	for _, p := range points {
		name, ok := cat.Name(p.ParameterID)
		if !ok {
			return nil, 0, fmt.Errorf("%w: tag index %d", ErrUnknownParameter, p.ParameterID)
		}
		pt, ok := validPoint(p.Timestamp, p.Value)
		if !ok {
			dropped++
			continue
		}
		g := groups[p.ParameterID]
		if g == nil {
			g = &models.Series{ParameterID: p.ParameterID, Parameter: name}
			groups[p.ParameterID] = g
		}
		g.Points = append(g.Points, pt)
	}

	out := make(map[string]models.Series, len(groups))
	for _, g := range groups {
		g.Points = sortStrict(g.Points)
		out[g.Parameter] = *g
	}
	return out, dropped, nil
}

// validPoint is the drop-invalid-row policy: a point survives only with a
// parseable timestamp and a finite numeric value.
func validPoint(ts, val any) (models.Point, bool) {
	t, ok := toTime(ts)
	if !ok {
		return models.Point{}, false
	}
	v, ok := toFloat(val)
	if !ok {
		return models.Point{}, false
	}
	return models.Point{Timestamp: t, Value: v}, true
}

// sortStrict orders points by time. Points sharing a timestamp collapse to
// the one that came last in the input.
func sortStrict(pts []models.Point) []models.Point {
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Timestamp.Before(pts[j].Timestamp) })
	out := pts[:0]
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(p.Timestamp) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
