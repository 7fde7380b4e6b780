package assets

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveAndOpen(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("fake png bytes")
	fileID, err := store.Save(data, "image/png")
	require.NoError(t, err)
	assert.True(t, len(fileID) > 4)
	assert.Contains(t, fileID, ".png")

	rc, err := store.Open(fileID)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.True(t, store.Exists(fileID))
}

func TestStoreUnsupportedMime(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save([]byte("data"), "text/html")
	assert.Error(t, err)
}

func TestStoreRejectsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "../etc/passwd", "a/b.png", `a\b.png`} {
		_, err := store.Open(id)
		assert.Error(t, err, "id=%q", id)
	}
}

func TestMimeTypeByExt(t *testing.T) {
	assert.Equal(t, "image/png", MimeTypeByExt("abc.png"))
	assert.Equal(t, "image/jpeg", MimeTypeByExt("abc.jpg"))
	assert.Equal(t, "image/jpeg", MimeTypeByExt("abc.jpeg"))
	assert.Equal(t, "application/octet-stream", MimeTypeByExt("abc.bin"))
}
