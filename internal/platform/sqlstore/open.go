package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// sqlitePragmas are applied to every new SQLite connection.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

// Open opens and pings a database for the dialect. For SQLite, url is a
// file path, a "file:" URI or ":memory:"; connection pragmas are appended.
func Open(ctx context.Context, d Dialect, url string, maxOpenConns int) (*sql.DB, error) {
	dsn := url
	if d == SQLite {
		dsn = sqliteDSN(url)
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d, err)
	}

	switch {
	case d == SQLite && isMemory(url):
		// Every connection to :memory: is a separate database, so the
		// single connection must never be recycled.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	case maxOpenConns > 0:
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
		db.SetConnMaxLifetime(5 * time.Minute)
	default:
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", d, err)
	}

	return db, nil
}

func sqliteDSN(url string) string {
	if isMemory(url) {
		return "file::memory:?" + sqlitePragmas
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + sqlitePragmas
}

func isMemory(url string) bool {
	return url == ":memory:" || url == "file::memory:"
}
