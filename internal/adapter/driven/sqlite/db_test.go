package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDSN_EscapesPath(t *testing.T) {
	assert.Equal(t,
		"file:/data/odd%3Fname%23x.db?"+filePragmas,
		fileDSN("/data/odd?name#x.db"))
	assert.Equal(t, "file:bakelink.db?"+filePragmas, fileDSN("bakelink.db"))
}

func TestNewDB_PathWithQueryCharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd?name#1 copy.db")
	ctx := context.Background()

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(db.Writer))

	_, err = os.Stat(path)
	require.NoError(t, err, "database file is created at the literal path")

	var mode string
	require.NoError(t, db.Writer.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode, "pragmas survive the escaped path")

	var busy int
	require.NoError(t, db.Reader.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busy))
	assert.Equal(t, 5000, busy)
}
