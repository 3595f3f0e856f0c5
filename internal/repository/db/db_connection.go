package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names as registered with database/sql.
const (
	SQLite = "sqlite"
	Pgx    = "pgx"
)

const (
	defaultTable = "float_table"
	pingTimeout  = 5 * time.Second
)

// Options describes how to reach the historian table.
type Options struct {
	Driver       string
	DSN          string
	Table        string
	Migrate      bool // sqlite only
	MaxOpenConns int
}

// InitDB opens the pool, optionally creates the readings table (sqlite only)
// and fails fast if the database cannot be reached.
func InitDB(opts Options) (*sql.DB, error) {
	dsn := opts.DSN
	switch opts.Driver {
	case SQLite:
		dsn = withSQLitePragmas(dsn)
	case Pgx:
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}

	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	if opts.Driver == SQLite && opts.Migrate {
		if err := ensureSchema(ctx, db, tableOrDefault(opts.Table)); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// withSQLitePragmas appends per-connection pragmas so every pooled
// connection gets them, not only the first one.
func withSQLitePragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)"
}

func tableOrDefault(table string) string {
	if table == "" {
		return defaultTable
	}
	return table
}

// Table layout mirrors MDR.dbo.FloatTable: one row per tag sample, with the
// calendar date and hour denormalized for the window query.
const schemaReadings = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    date_and_time TIMESTAMP NOT NULL,
    hour INTEGER NOT NULL,
    tag_index INTEGER NOT NULL,
    val REAL
);
`

const schemaWindowIndex = `
CREATE INDEX IF NOT EXISTS %[1]s_window_idx ON %[1]s (date, hour, tag_index, date_and_time);
`

const schemaTimeIndex = `
CREATE INDEX IF NOT EXISTS %[1]s_time_idx ON %[1]s (date_and_time);
`

func ensureSchema(ctx context.Context, db *sql.DB, table string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{schemaReadings, schemaWindowIndex, schemaTimeIndex} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(stmt, table)); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}

// Rebind rewrites '?' placeholders into the driver's style ($1, $2, ... for pgx).
func Rebind(driver, query string) string {
	if driver != Pgx {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Placeholders returns "?, ?, ?" with n markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
