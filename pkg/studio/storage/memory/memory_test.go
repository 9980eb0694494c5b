package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	t.Run("upload and download", func(t *testing.T) {
		err := backend.UploadWithParams(ctx, strings.NewReader("jpeg bytes"), studio.UploadParams{
			ObjectKey: "images/objects/ab/cd.jpg",
			MimeType:  "image/jpeg",
		})
		require.NoError(t, err)

		rc, err := backend.Download(ctx, "images/objects/ab/cd.jpg")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "jpeg bytes", string(data))

		meta, err := backend.GetObjectMeta(ctx, "images/objects/ab/cd.jpg")
		require.NoError(t, err)
		assert.Equal(t, int64(10), meta.Size)
		assert.Equal(t, "image/jpeg", meta.ContentType)
		assert.False(t, meta.UpdatedAt.IsZero())
	})

	t.Run("plain upload defaults the type", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, "raw", strings.NewReader("x")))
		meta, err := backend.GetObjectMeta(ctx, "raw")
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", meta.ContentType)
	})

	t.Run("missing objects", func(t *testing.T) {
		_, err := backend.Download(ctx, "missing")
		assert.ErrorIs(t, err, studio.ErrObjectNotFound)
		_, err = backend.GetObjectMeta(ctx, "missing")
		assert.ErrorIs(t, err, studio.ErrObjectNotFound)
		assert.ErrorIs(t, backend.Delete(ctx, "missing"), studio.ErrObjectNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, backend.Upload(ctx, "gone", strings.NewReader("x")))
		require.NoError(t, backend.Delete(ctx, "gone"))
		_, err := backend.Download(ctx, "gone")
		assert.ErrorIs(t, err, studio.ErrObjectNotFound)
	})
}
