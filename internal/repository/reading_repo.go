package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"furnace_trends/internal/models"
	"furnace_trends/internal/repository/db"
)

const (
	defaultReadingTable = "float_table"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// ReadingSQL reads float_table through database/sql. It works on sqlite and
// on Postgres (pgx) alike; only the placeholder style differs.
type ReadingSQL struct {
	db      *sql.DB
	driver  string
	table   string
	timeout time.Duration
}

type ReadingOption func(*ReadingSQL)

// WithDriver selects the placeholder dialect (db.SQLite or db.Pgx).
func WithDriver(driver string) ReadingOption {
	return func(r *ReadingSQL) { r.driver = driver }
}

func WithTable(table string) ReadingOption {
	return func(r *ReadingSQL) {
		if table != "" {
			r.table = table
		}
	}
}

// WithQueryTimeout bounds every query on top of the caller's context.
func WithQueryTimeout(d time.Duration) ReadingOption {
	return func(r *ReadingSQL) { r.timeout = d }
}

func NewReadingSQL(conn *sql.DB, opts ...ReadingOption) *ReadingSQL {
	r := &ReadingSQL{db: conn, driver: db.SQLite, table: defaultReadingTable}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// The window keeps one row per (date, tag): the latest date_and_time, and
// on equal timestamps the most recently inserted row (highest id).
const latestInWindowSQL = `
	WITH ranked AS (
		SELECT
			date,
			date_and_time,
			hour,
			tag_index,
			val,
			ROW_NUMBER() OVER (PARTITION BY date, tag_index ORDER BY date_and_time DESC, id DESC) AS rn
		FROM %s
		WHERE date BETWEEN ? AND ?
			AND hour = ?
			AND tag_index IN (%s)
	)
	SELECT date, date_and_time, hour, tag_index, val
	FROM ranked
	WHERE rn = 1
	ORDER BY date ASC, tag_index ASC
`

func (r *ReadingSQL) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return context.WithCancel(ctx)
}

// query runs q on a connection held only for this call.
func (r *ReadingSQL) query(ctx context.Context, q string, args []any, scan func(*sql.Rows) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, db.Rebind(r.driver, q), args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan %s row: %w", r.table, err)
		}
	}
	return rows.Err()
}

func (r *ReadingSQL) LatestInWindow(ctx context.Context, start, end time.Time, hour int, tagIndexes []int) ([]models.SampledPoint, error) {
	if len(tagIndexes) == 0 {
		return []models.SampledPoint{}, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	q := fmt.Sprintf(latestInWindowSQL, r.table, db.Placeholders(len(tagIndexes)))
	args := make([]any, 0, 3+len(tagIndexes))
	args = append(args, start.Format(dateLayout), end.Format(dateLayout), hour)
	for _, id := range tagIndexes {
		args = append(args, id)
	}

	out := make([]models.SampledPoint, 0, len(tagIndexes)*8)
	err := r.query(ctx, q, args, func(rows *sql.Rows) error {
		var (
			p       models.SampledPoint
			rawDate any
		)
		if err := rows.Scan(&rawDate, &p.Timestamp, &p.Hour, &p.ParameterID, &p.Value); err != nil {
			return err
		}
		d, err := parseDate(rawDate)
		if err != nil {
			return err
		}
		p.Date = d
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReadingSQL) ListRaw(ctx context.Context, f RawFilter) ([]models.RawReading, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	conds := []string{"date_and_time >= ?", "date_and_time <= ?"}
	args := []any{f.From.UTC().Format(dateTimeLayout), f.To.UTC().Format(dateTimeLayout)}
	if len(f.TagIndexes) > 0 {
		conds = append(conds, "tag_index IN ("+db.Placeholders(len(f.TagIndexes))+")")
		for _, id := range f.TagIndexes {
			args = append(args, id)
		}
	}

	order := "ASC"
	if f.NewestFirst {
		order = "DESC"
	}
	q := fmt.Sprintf(`SELECT date_and_time, tag_index, val FROM %s WHERE %s ORDER BY date_and_time %s, id %s`,
		r.table, strings.Join(conds, " AND "), order, order)
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	out := make([]models.RawReading, 0, 64)
	err := r.query(ctx, q, args, func(rows *sql.Rows) error {
		var rr models.RawReading
		if err := rows.Scan(&rr.Timestamp, &rr.ParameterID, &rr.Value); err != nil {
			return err
		}
		out = append(out, rr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseDate accepts what sqlite (TEXT) and Postgres (DATE) hand back.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		return parseDateString(d)
	case []byte:
		return parseDateString(string(d))
	default:
		return time.Time{}, fmt.Errorf("unexpected date value %T", v)
	}
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
