package service

import (
	"context"
	"math"
	"time"

	"furnace_trends/internal/catalog"
	"furnace_trends/internal/models"
)

// KPIRequest selects the window of the KPI page; it always covers every
// catalog parameter.
type KPIRequest struct {
	Start time.Time
	End   time.Time
	Hour  int
}

type KPIResult struct {
	RunID   string
	Window  Window
	Panels  []models.Panel
	Dropped int
}

type KPIService struct {
	trends  *TrendService
	catalog *catalog.Catalog
}

func NewKPIService(trends *TrendService, cat *catalog.Catalog) *KPIService {
	return &KPIService{trends: trends, catalog: cat}
}

// Panels returns one panel per catalog entry in id order. Panels without
// data keep their place with HasData=false.
func (s *KPIService) Panels(ctx context.Context, r KPIRequest) (KPIResult, error) {
	res, err := s.trends.run(ctx, pipelineKPI, Window{
		Start:        r.Start,
		End:          r.End,
		Hour:         r.Hour,
		ParameterIDs: s.catalog.IDs(),
	})
	if err != nil {
		return KPIResult{RunID: res.RunID}, err
	}

	entries := s.catalog.Entries()
	panels := make([]models.Panel, 0, len(entries))
	for _, e := range entries {
		p := models.Panel{ParameterID: e.ID, Parameter: e.Name, Slug: e.Slug, Points: []models.Point{}}
		if series, ok := res.Series[e.Name]; ok && len(series.Points) > 0 {
			fillRange(&p, series.Points)
		}
		panels = append(panels, p)
	}
	return KPIResult{RunID: res.RunID, Window: res.Window, Panels: panels, Dropped: res.Dropped}, nil
}

// fillRange sets min/max and a y-range padded by the data spread on both
// sides. A flat series is padded by 5% of its level (or 1 at zero).
func fillRange(p *models.Panel, pts []models.Point) {
	lo, hi := pts[0].Value, pts[0].Value
	for _, pt := range pts[1:] {
		lo = math.Min(lo, pt.Value)
		hi = math.Max(hi, pt.Value)
	}
	pad := hi - lo
	if pad == 0 {
		pad = math.Abs(hi) * 0.05
		if pad == 0 {
			pad = 1
		}
	}
	p.HasData = true
	p.Points = pts
	p.Min = &lo
	p.Max = &hi
	p.YRange = &[2]float64{round2(lo - pad), round2(hi + pad)}
}
