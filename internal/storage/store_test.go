package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trove/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStoreSave(t *testing.T) {
	t.Run("re-encodes an accepted upload", func(t *testing.T) {
		store := newTestStore(t)

		name, err := store.Save(pngBytes(t, 32, 32), "image/png")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".webp"))
		assert.Equal(t, name, filepath.Base(name))

		path, err := store.Path(name)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	})

	t.Run("empty upload rejected", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Save(nil, "image/png")
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("oversized upload rejected", func(t *testing.T) {
		store := newTestStore(t)
		// Valid PNG header, body padded past the limit.
		content := append(pngBytes(t, 4, 4), make([]byte, DefaultMaxUploadSizeMB*1024*1024)...)
		_, err := store.Save(content, "image/png")
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("non-image bytes rejected", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Save([]byte("definitely not an image"), "image/png")
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("declared type must match content", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Save(pngBytes(t, 8, 8), "image/gif")
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("non-image declared type is ignored", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Save(pngBytes(t, 8, 8), "application/octet-stream")
		assert.NoError(t, err)
	})
}

func TestStorePath(t *testing.T) {
	store := newTestStore(t)
	name, err := store.Save(pngBytes(t, 8, 8), "image/png")
	require.NoError(t, err)

	t.Run("resolves stored names", func(t *testing.T) {
		path, err := store.Path(name)
		require.NoError(t, err)
		assert.Equal(t, name, filepath.Base(path))
	})

	t.Run("rejects traversal", func(t *testing.T) {
		_, err := store.Path("../" + name)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

		_, err = store.Path("nested/" + name)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("missing file is NotFound", func(t *testing.T) {
		_, err := store.Path("nope.webp")
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	name, err := store.Save(pngBytes(t, 8, 8), "image/png")
	require.NoError(t, err)

	require.NoError(t, store.Delete(name))
	_, err = store.Path(name)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	// Deleting again is fine.
	assert.NoError(t, store.Delete(name))
}

func TestResizeToFit(t *testing.T) {
	t.Run("large images are bounded", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 4096, 1024))
		dst := resizeToFit(src, MaxDimension, MaxDimension)
		assert.Equal(t, 2048, dst.Bounds().Dx())
		assert.Equal(t, 512, dst.Bounds().Dy())
	})

	t.Run("small images pass through", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 100, 50))
		dst := resizeToFit(src, MaxDimension, MaxDimension)
		assert.Equal(t, src, dst)
	})
}
