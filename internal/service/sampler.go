package service

import (
	"context"
	"fmt"

	"furnace_trends/internal/catalog"
	"furnace_trends/internal/models"
	"furnace_trends/internal/repository"
)

type SamplerService struct {
	readings repository.ReadingRepo
	catalog  *catalog.Catalog
}

func NewSamplerService(readings repository.ReadingRepo, cat *catalog.Catalog) *SamplerService {
	return &SamplerService{readings: readings, catalog: cat}
}

// Sample returns, for every (date, parameter) inside w, the latest reading
// taken at w.Hour. Numeric values come back rounded to two places; cells
// that are not numeric are left for the assembler to drop.
// An empty result is not an error.
func (s *SamplerService) Sample(ctx context.Context, w Window) ([]models.SampledPoint, error) {
	w, err := normalizeWindow(w, s.catalog)
	if err != nil {
		return nil, err
	}

	points, err := s.readings.LatestInWindow(ctx, w.Start, w.End, w.Hour, w.ParameterIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataSourceUnavailable, err)
	}
	for i := range points {
		points[i].Value = roundCell(points[i].Value)
	}
	return points, nil
}
