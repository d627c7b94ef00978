package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_IsolatedDatabases(t *testing.T) {
	ctx := context.Background()

	a, err := Open(ctx, false)
	require.NoError(t, err)
	defer a.Close()
	b, err := Open(ctx, false)
	require.NoError(t, err)
	defer b.Close()

	_, err = a.ExecContext(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	var n int
	err = b.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 't'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOpen_ForeignKeysPragma(t *testing.T) {
	ctx := context.Background()
	for _, on := range []bool{false, true} {
		db, err := Open(ctx, on)
		require.NoError(t, err)

		var fk int
		require.NoError(t, db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
		assert.Equal(t, on, fk == 1)
		require.NoError(t, db.Close())
	}
}
