package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	fs := NewFileStorage(dir)
	ctx := context.Background()

	data, err := fs.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, fs.Save(ctx, StorageKey, []byte(`{"a":1}`)))
	require.NoError(t, fs.Save(ctx, StorageKey, []byte(`{"a":2}`)))

	data, err = fs.Load(ctx, StorageKey)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	info, err := os.Stat(filepath.Join(dir, "auth-storage.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files should not be left behind")
}

func TestFileStorage_RejectsPathKeys(t *testing.T) {
	fs := NewFileStorage(t.TempDir())

	assert.Error(t, fs.Save(context.Background(), "../escape", []byte("x")))
	_, err := fs.Load(context.Background(), "a/b")
	assert.Error(t, err)
}

func TestMemoryStorage_CopiesData(t *testing.T) {
	ms := NewMemoryStorage()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, ms.Save(ctx, "k", buf))
	buf[0] = 'x'

	data, err := ms.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	data, err = ms.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, data)
}
