package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAferoStore_Unit(t *testing.T) {
	// No disk I/O: the store runs on an in-memory filesystem.
	memFs := afero.NewMemMapFs()
	store := NewAferoStore(memFs)
	ctx := context.Background()

	filePath := "avatars/abc/1234.png"
	fileContent := "\x89PNG fake image bytes"

	t.Run("Save", func(t *testing.T) {
		bytesWritten, err := store.Save(ctx, filePath, bytes.NewReader([]byte(fileContent)))

		require.NoError(t, err)
		assert.Equal(t, int64(len(fileContent)), bytesWritten)

		exists, err := afero.Exists(memFs, filePath)
		require.NoError(t, err)
		assert.True(t, exists, "file should exist after saving")

		readBytes, err := afero.ReadFile(memFs, filePath)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))
	})

	t.Run("Open", func(t *testing.T) {
		file, err := store.Open(ctx, filePath)
		require.NoError(t, err)
		defer file.Close()

		readBytes, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, fileContent, string(readBytes))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, filePath))

		exists, err := afero.Exists(memFs, filePath)
		require.NoError(t, err)
		assert.False(t, exists, "file should not exist after deleting")
	})

	t.Run("Delete missing file", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "avatars/nothing.png"))
	})

	t.Run("Open non-existent file", func(t *testing.T) {
		_, err := store.Open(ctx, "path/to/nothing.txt")
		assert.Error(t, err, "opening a non-existent file should return an error")
	})
}

func TestAferoStore_RejectsUnsafePaths(t *testing.T) {
	store := NewAferoStore(afero.NewMemMapFs())
	ctx := context.Background()

	for _, p := range []string{"", "/etc/passwd", "../secret", "avatars/../../x", `avatars\x.png`} {
		_, err := store.Save(ctx, p, bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrInvalidPath, "path %q", p)
	}
}
