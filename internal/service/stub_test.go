package service

import (
	"context"
	"time"

	"furnace_trends/internal/models"
	"furnace_trends/internal/repository"
)

// readingRepoStub satisfies repository.ReadingRepo and records the calls it saw.
type readingRepoStub struct {
	sampled []models.SampledPoint
	raw     []models.RawReading
	err     error

	windowCalls int
	gotStart    time.Time
	gotEnd      time.Time
	gotHour     int
	gotTags     []int
	gotFilter   repository.RawFilter
}

func (s *readingRepoStub) LatestInWindow(ctx context.Context, start, end time.Time, hour int, tagIndexes []int) ([]models.SampledPoint, error) {
	s.windowCalls++
	s.gotStart, s.gotEnd, s.gotHour, s.gotTags = start, end, hour, tagIndexes
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.SampledPoint, len(s.sampled))
	copy(out, s.sampled)
	return out, nil
}

func (s *readingRepoStub) ListRaw(ctx context.Context, f repository.RawFilter) ([]models.RawReading, error) {
	s.gotFilter = f
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

func mustDay(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustTS(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sp(date, ts string, id int, v any) models.SampledPoint {
	return models.SampledPoint{Date: mustDay(date), Timestamp: ts, Hour: 6, ParameterID: id, Value: v}
}
