// Package testdb provides database fixtures for tests.
//
// By default every call to New returns a private, fully migrated
// in-memory SQLite database, so store and service tests run without any
// external services. When LOSTFOUND_TEST_DATABASE_URL (or DATABASE_URL)
// is set, NewPostgres connects to that PostgreSQL server instead; tests
// that need it are built with the integration tag.
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.New(t)
//	    items := sqlstore.NewItemStore(db.DB, db.Dialect)
//	    ...
//	}
//
// WithTx runs a function inside a transaction that is always rolled back,
// which keeps parallel PostgreSQL tests isolated from each other.
package testdb
