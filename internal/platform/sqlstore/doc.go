// Package sqlstore implements the persistence interfaces of internal/store
// on database/sql. Two dialects are supported: PostgreSQL through the pgx
// stdlib driver and SQLite through modernc.org/sqlite. Queries are written
// once with '?' placeholders and rebound for the active dialect.
//
// The package also owns the schema: goose migrations for both dialects are
// embedded and applied with Migrate.
package sqlstore
