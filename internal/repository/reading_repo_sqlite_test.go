package repository

import (
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"furnace_trends/internal/models"
	"furnace_trends/internal/repository/db"
)

type seedRow struct {
	date  string
	ts    string
	hour  int
	tag   int
	value any
}

func newSQLite(t *testing.T, rows []seedRow) *sql.DB {
	t.Helper()
	conn, err := db.InitDB(db.Options{
		Driver:       db.SQLite,
		DSN:          filepath.Join(t.TempDir(), "mdr.db"),
		Migrate:      true,
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	for _, r := range rows {
		if _, err := conn.Exec(
			`INSERT INTO float_table (date, date_and_time, hour, tag_index, val) VALUES (?, ?, ?, ?, ?)`,
			r.date, r.ts, r.hour, r.tag, r.value,
		); err != nil {
			t.Fatalf("seed %+v: %v", r, err)
		}
	}
	return conn
}

func timestampText(v any) string {
	switch ts := v.(type) {
	case time.Time:
		return ts.UTC().Format(dateTimeLayout)
	case string:
		if len(ts) >= len(dateTimeLayout) {
			return ts[:len(dateTimeLayout)]
		}
		return ts
	default:
		return ""
	}
}

func day(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func TestSQLite_LatestInWindow_PicksLatestPerDayAndTag(t *testing.T) {
	t.Parallel()

	conn := newSQLite(t, []seedRow{
		{"2025-02-01", "2025-02-01 06:00:00", 6, 0, 10.555},
		{"2025-02-01", "2025-02-01 06:05:00", 6, 0, 10.6},
		{"2025-02-02", "2025-02-02 06:00:00", 6, 0, 11.0},
		// other hour, other tag, outside the range: all filtered out
		{"2025-02-01", "2025-02-01 07:00:00", 7, 0, 99.0},
		{"2025-02-01", "2025-02-01 06:10:00", 6, 5, 42.0},
		{"2025-02-03", "2025-02-03 06:00:00", 6, 0, 12.0},
	})
	repo := NewReadingSQL(conn)

	got, err := repo.LatestInWindow(ctx(t), day("2025-02-01"), day("2025-02-02"), 6, []int{0})
	if err != nil {
		t.Fatalf("LatestInWindow: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 points, got %d: %+v", len(got), got)
	}
	want := []struct {
		date  string
		ts    string
		value float64
	}{
		{"2025-02-01", "2025-02-01 06:05:00", 10.6},
		{"2025-02-02", "2025-02-02 06:00:00", 11.0},
	}
	for i, w := range want {
		p := got[i]
		if !p.Date.Equal(day(w.date)) || timestampText(p.Timestamp) != w.ts || p.Value != w.value || p.Hour != 6 || p.ParameterID != 0 {
			t.Fatalf("point %d = %+v; want %+v", i, p, w)
		}
	}
}

func TestSQLite_LatestInWindow_TieBreaksOnInsertionOrder(t *testing.T) {
	t.Parallel()

	conn := newSQLite(t, []seedRow{
		{"2025-02-01", "2025-02-01 06:30:00", 6, 1, 1.0},
		{"2025-02-01", "2025-02-01 06:30:00", 6, 1, 2.0},
	})
	repo := NewReadingSQL(conn)

	got, err := repo.LatestInWindow(ctx(t), day("2025-02-01"), day("2025-02-01"), 6, []int{1})
	if err != nil {
		t.Fatalf("LatestInWindow: %v", err)
	}
	if len(got) != 1 || got[0].Value != 2.0 {
		t.Fatalf("want the later inserted row (2.0), got %+v", got)
	}
}

func TestSQLite_LatestInWindow_IsDeterministicAndUnique(t *testing.T) {
	t.Parallel()

	var rows []seedRow
	for d := 1; d <= 5; d++ {
		date := time.Date(2025, 2, d, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		for tag := 0; tag < 3; tag++ {
			for m := 0; m < 4; m++ {
				ts := time.Date(2025, 2, d, 6, m*10, 0, 0, time.UTC).Format(dateTimeLayout)
				rows = append(rows, seedRow{date, ts, 6, tag, float64(d*100 + tag*10 + m)})
			}
		}
	}
	conn := newSQLite(t, rows)
	repo := NewReadingSQL(conn)

	first, err := repo.LatestInWindow(ctx(t), day("2025-02-02"), day("2025-02-04"), 6, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("LatestInWindow: %v", err)
	}
	second, err := repo.LatestInWindow(ctx(t), day("2025-02-02"), day("2025-02-04"), 6, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("LatestInWindow: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two runs differ:\n%+v\n%+v", first, second)
	}
	if len(first) != 9 {
		t.Fatalf("want 3 days x 3 tags = 9 points, got %d", len(first))
	}
	seen := map[[2]int64]bool{}
	for _, p := range first {
		key := [2]int64{p.Date.Unix(), int64(p.ParameterID)}
		if seen[key] {
			t.Fatalf("duplicate (date, tag) %v", key)
		}
		seen[key] = true
		if p.Date.Before(day("2025-02-02")) || p.Date.After(day("2025-02-04")) {
			t.Fatalf("date %v outside window", p.Date)
		}
		// minute 30 is the latest reading of every day/tag
		if v, ok := p.Value.(float64); !ok || int(v)%10 != 3 {
			t.Fatalf("point %+v is not the latest reading", p)
		}
	}
}

func TestSQLite_LatestInWindow_PassesThroughTextValues(t *testing.T) {
	t.Parallel()

	conn := newSQLite(t, []seedRow{
		{"2025-02-01", "2025-02-01 06:00:00", 6, 2, "N/A"},
	})
	repo := NewReadingSQL(conn)

	got, err := repo.LatestInWindow(ctx(t), day("2025-02-01"), day("2025-02-01"), 6, []int{2})
	if err != nil {
		t.Fatalf("LatestInWindow: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 point, got %d", len(got))
	}
	if s, ok := got[0].Value.(string); !ok || s != "N/A" {
		t.Fatalf("value = %#v; want raw text", got[0].Value)
	}
}

func TestSQLite_ListRaw(t *testing.T) {
	t.Parallel()

	conn := newSQLite(t, []seedRow{
		{"2025-02-01", "2025-02-01 05:59:59", 5, 0, 1.0},
		{"2025-02-01", "2025-02-01 06:00:00", 6, 0, 2.0},
		{"2025-02-01", "2025-02-01 06:30:00", 6, 1, 3.0},
		{"2025-02-01", "2025-02-01 07:00:00", 7, 0, 4.0},
	})
	repo := NewReadingSQL(conn)

	from := time.Date(2025, 2, 1, 6, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 7, 0, 0, 0, time.UTC)

	desc, err := repo.ListRaw(ctx(t), RawFilter{From: from, To: to, NewestFirst: true})
	if err != nil {
		t.Fatalf("ListRaw: %v", err)
	}
	if vals := rawValues(desc); !reflect.DeepEqual(vals, []any{4.0, 3.0, 2.0}) {
		t.Fatalf("desc values = %v", vals)
	}

	onlyTag0, err := repo.ListRaw(ctx(t), RawFilter{From: from, To: to, TagIndexes: []int{0}, Limit: 1})
	if err != nil {
		t.Fatalf("ListRaw: %v", err)
	}
	if vals := rawValues(onlyTag0); !reflect.DeepEqual(vals, []any{2.0}) {
		t.Fatalf("tag 0 asc limit 1 = %v", vals)
	}
}

func rawValues(rs []models.RawReading) []any {
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = r.Value
	}
	return out
}
