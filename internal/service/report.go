package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"furnace_trends/internal/catalog"
	"furnace_trends/internal/logger"
	"furnace_trends/internal/metrics"
	"furnace_trends/internal/models"
	"furnace_trends/internal/repository"
)

const defaultReportMaxRows = 5000

// ReportFilter selects raw readings in [From, To]. Empty ParameterIDs means
// every tag. Limit <= 0 or above the configured cap uses the cap.
type ReportFilter struct {
	From         time.Time
	To           time.Time
	ParameterIDs []int
	NewestFirst  bool
	Limit        int
}

type ReportResult struct {
	Rows    []models.ReportRow
	Limit   int
	Dropped int
}

type ReportService struct {
	readings repository.ReadingRepo
	catalog  *catalog.Catalog
	maxRows  int
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func NewReportService(readings repository.ReadingRepo, cat *catalog.Catalog, maxRows int, m *metrics.Metrics, log *logger.Logger) *ReportService {
	if maxRows <= 0 {
		maxRows = defaultReportMaxRows
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReportService{readings: readings, catalog: cat, maxRows: maxRows, metrics: m, log: log}
}

var errMissingBounds = errors.New("both from and to are required")

// Readings lists raw rows rounded to two places. Rows with an unreadable
// timestamp are dropped; unreadable values are kept as nil.
func (s *ReportService) Readings(ctx context.Context, f ReportFilter) (res ReportResult, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveRun(pipelineReport, outcomeOf(err), time.Since(started))
		if err != nil && !IsCallerError(err) {
			s.log.Errorw("report_failed", "err", err, "from", f.From, "to", f.To)
		}
	}()

	if f.From.IsZero() || f.To.IsZero() {
		return ReportResult{}, fmt.Errorf("%w: %w", ErrInvalidRange, errMissingBounds)
	}
	if f.From.After(f.To) {
		return ReportResult{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, f.From.Format(time.RFC3339), f.To.Format(time.RFC3339))
	}
	ids, err := normalizeParameterIDs(f.ParameterIDs, s.catalog, true)
	if err != nil {
		return ReportResult{}, err
	}
	limit := f.Limit
	if limit <= 0 || limit > s.maxRows {
		limit = s.maxRows
	}

	raw, err := s.readings.ListRaw(ctx, repository.RawFilter{
		From:        f.From,
		To:          f.To,
		TagIndexes:  ids,
		NewestFirst: f.NewestFirst,
		Limit:       limit,
	})
	if err != nil {
		return ReportResult{}, fmt.Errorf("%w: %w", ErrDataSourceUnavailable, err)
	}

	rows := make([]models.ReportRow, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		name, ok := s.catalog.Name(r.ParameterID)
		if !ok {
			return ReportResult{}, fmt.Errorf("%w: tag index %d", ErrUnknownParameter, r.ParameterID)
		}
		ts, ok := toTime(r.Timestamp)
		if !ok {
			dropped++
			continue
		}
		row := models.ReportRow{Timestamp: ts, ParameterID: r.ParameterID, Parameter: name}
		if v, ok := toFloat(r.Value); ok {
			v = round2(v)
			row.Value = &v
		}
		rows = append(rows, row)
	}
	s.metrics.AddDropped(dropped)
	return ReportResult{Rows: rows, Limit: limit, Dropped: dropped}, nil
}
