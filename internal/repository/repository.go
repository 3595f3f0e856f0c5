package repository

import (
	"context"
	"database/sql"
	"time"

	"furnace_trends/internal/models"
)

// ReadingRepo is the read-only view of the historian table.
type ReadingRepo interface {
	// LatestInWindow returns, per (date, tag), the newest reading recorded
	// at the given hour with a date in [start, end].
	LatestInWindow(ctx context.Context, start, end time.Time, hour int, tagIndexes []int) ([]models.SampledPoint, error)
	// ListRaw returns readings with date_and_time in [from, to].
	ListRaw(ctx context.Context, f RawFilter) ([]models.RawReading, error)
}

// RawFilter narrows ListRaw. An empty TagIndexes means every tag.
type RawFilter struct {
	From        time.Time
	To          time.Time
	TagIndexes  []int
	NewestFirst bool
	Limit       int
}

type Repository struct {
	Readings ReadingRepo
}

func NewRepository(db *sql.DB, opts ...ReadingOption) *Repository {
	return &Repository{
		Readings: NewReadingSQL(db, opts...),
	}
}
