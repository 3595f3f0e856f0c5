package service

import (
	"context"

	"furnace_trends/internal/catalog"
	"furnace_trends/internal/logger"
	"furnace_trends/internal/metrics"
	"furnace_trends/internal/models"
	"furnace_trends/internal/repository"
)

// Sampler picks one representative reading per day and parameter.
type Sampler interface {
	Sample(ctx context.Context, w Window) ([]models.SampledPoint, error)
}

// Trends runs the sample-then-assemble pipeline for selected parameters.
type Trends interface {
	Build(ctx context.Context, w Window) (TrendResult, error)
}

// KPI builds one panel per catalog parameter.
type KPI interface {
	Panels(ctx context.Context, r KPIRequest) (KPIResult, error)
}

// Report lists raw readings for the table and single-tag history views.
type Report interface {
	Readings(ctx context.Context, f ReportFilter) (ReportResult, error)
}

// Service aggregates the read-only services the HTTP layer needs.
// Catalog is shared, never mutated.
type Service struct {
	Trends
	KPI
	Report
	Catalog *catalog.Catalog
}

// Options carries the ambient dependencies of the services.
type Options struct {
	Metrics       *metrics.Metrics
	Log           *logger.Logger
	ReportMaxRows int
}

func NewService(repos *repository.Repository, cat *catalog.Catalog, opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	sampler := NewSamplerService(repos.Readings, cat)
	trends := NewTrendService(sampler, cat, opts.Metrics, log)
	return &Service{
		Trends:  trends,
		KPI:     NewKPIService(trends, cat),
		Report:  NewReportService(repos.Readings, cat, opts.ReportMaxRows, opts.Metrics, log),
		Catalog: cat,
	}
}
