package sqlite

import (
	"context"
	"net/url"
	"testing"
)

// newMemoryDB opens a private in-memory credentials database with the schema
// applied. cache=shared lets the writer and reader pools see the same data;
// the per-test name keeps tests apart.
func newMemoryDB(t *testing.T) *DB {
	t.Helper()

	dsn := "file:" + url.PathEscape(t.Name()) +
		"?mode=memory&cache=shared&_pragma=busy_timeout(5000)"

	db, err := openDSN(context.Background(), dsn, ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("migrate in-memory db: %v", err)
	}
	return db
}

// testKey is a fixed 32-byte AES-256 key for encryption tests.
var testKey = []byte("0123456789abcdef0123456789abcdef")
