package storage

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("2024-01-01/sess-1.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01/sess-1.png", name)

	file, err := store.Open(name)
	require.NoError(t, err)
	defer file.Close()

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete("nope.png"))
}

func TestLocalStorageCleanup(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("old/sess-1.png", []byte("a"))
	require.NoError(t, err)

	deleted, err := store.CleanupOlderThan(-time.Minute)
	require.NoError(t, err)
	assert.Len(t, deleted, 1)

	_, err = store.Open("old/sess-1.png")
	assert.Error(t, err)
}
