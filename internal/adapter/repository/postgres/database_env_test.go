//go:build !integration

package postgres_test

import (
	"os"
	"testing"
)

// testDatabaseURL returns TEST_DATABASE_URL. Build with -tags integration to
// start a disposable Postgres container instead.
func testDatabaseURL(t *testing.T) string {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return url
}
