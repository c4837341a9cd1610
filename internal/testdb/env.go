package testdb

import "os"

// GetTestDatabaseURL returns the PostgreSQL URL for integration tests, or
// "" when none is configured.
func GetTestDatabaseURL() string {
	for _, name := range []string{"LOSTFOUND_TEST_DATABASE_URL", "DATABASE_URL"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a PostgreSQL server is
// configured for tests.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// ShouldSkipDatabaseTest reports whether PostgreSQL-only tests must be skipped.
func ShouldSkipDatabaseTest() bool {
	return !IsIntegrationTestEnvironment()
}
