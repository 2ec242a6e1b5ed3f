package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "period-tracker.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, path
}

func TestSlotStore(t *testing.T) {
	ctx := context.Background()
	db, _ := openTemp(t)

	v, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, db.Set(ctx, "k", []byte(`{"a":1}`)))
	require.NoError(t, db.Set(ctx, "k", []byte(`{"a":2}`)))
	v, err = db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), v)

	require.NoError(t, db.Set(ctx, "empty", nil))
	v, err = db.Get(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Empty(t, v)

	require.NoError(t, db.Delete(ctx, "k"))
	require.NoError(t, db.Delete(ctx, "k"))
	v, err = db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	db, path := openTemp(t)
	require.NoError(t, db.Set(ctx, "k", []byte("persisted")))
	require.NoError(t, db.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	v, err := again.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), v)
}
