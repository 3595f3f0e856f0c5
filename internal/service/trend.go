package service

import (
	"context"
	"errors"
	"time"

	"furnace_trends/internal/catalog"
	"furnace_trends/internal/logger"
	"furnace_trends/internal/metrics"
	"furnace_trends/internal/models"

	"github.com/google/uuid"
)

const (
	pipelineTrend  = "trend"
	pipelineKPI    = "kpi"
	pipelineReport = "report"
)

// TrendResult is the output of one pipeline run.
type TrendResult struct {
	RunID   string
	Window  Window
	Series  map[string]models.Series
	Sampled int
	Dropped int
}

type TrendService struct {
	sampler Sampler
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewTrendService(sampler Sampler, cat *catalog.Catalog, m *metrics.Metrics, log *logger.Logger) *TrendService {
	if log == nil {
		log = logger.Nop()
	}
	return &TrendService{sampler: sampler, catalog: cat, metrics: m, log: log}
}

// Build runs sample-then-assemble once for w.
func (s *TrendService) Build(ctx context.Context, w Window) (TrendResult, error) {
	return s.run(ctx, pipelineTrend, w)
}

func (s *TrendService) run(ctx context.Context, pipeline string, w Window) (res TrendResult, err error) {
	started := time.Now()
	res.RunID = uuid.NewString()
	log := s.log.With("run_id", res.RunID, "pipeline", pipeline)
	defer func() {
		elapsed := time.Since(started)
		s.metrics.ObserveRun(pipeline, outcomeOf(err), elapsed)
		if err != nil {
			if IsCallerError(err) {
				log.Infow("pipeline_rejected", "err", err)
			} else {
				log.Errorw("pipeline_failed", "err", err, "elapsed", elapsed)
			}
			return
		}
		log.Debugw("pipeline_done",
			"start", res.Window.Start.Format(time.DateOnly),
			"end", res.Window.End.Format(time.DateOnly),
			"hour", res.Window.Hour,
			"series", len(res.Series),
			"sampled", res.Sampled,
			"dropped", res.Dropped,
			"elapsed", elapsed,
		)
	}()

	w, err = normalizeWindow(w, s.catalog)
	if err != nil {
		return TrendResult{RunID: res.RunID}, err
	}
	res.Window = w

	points, err := s.sampler.Sample(ctx, w)
	if err != nil {
		return TrendResult{RunID: res.RunID}, err
	}
	series, dropped, err := Assemble(points, s.catalog)
	if err != nil {
		return TrendResult{RunID: res.RunID}, err
	}

	res.Series = series
	res.Sampled = len(points)
	res.Dropped = dropped
	s.metrics.AddSampled(res.Sampled)
	s.metrics.AddDropped(res.Dropped)
	return res, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case IsCallerError(err):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrDataSourceUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
