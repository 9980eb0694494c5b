package imageurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ref = "image-0a1b2c3d-1200x800-jpg"

func TestURL(t *testing.T) {
	b := New("https://cdn.example.com/")

	got, err := b.URL(ref, Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/0a1b2c3d-1200x800.jpg", got)

	got, err = b.URL(ref, Options{Width: 300, Height: 200, Fit: FitMax})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/0a1b2c3d-1200x800.jpg?fit=max&h=200&w=300", got)
}

func TestThumbnailAndSite(t *testing.T) {
	b := New("")

	thumb, err := b.Thumbnail(ref)
	require.NoError(t, err)
	assert.Equal(t, "/images/0a1b2c3d-1200x800.jpg?fit=crop&h=150&w=150", thumb)

	site, err := b.Site(ref)
	require.NoError(t, err)
	assert.Equal(t, "/images/0a1b2c3d-1200x800.jpg?auto=format", site)
}

func TestURLInvalidRef(t *testing.T) {
	b := New("https://cdn.example.com")
	for _, bad := range []string{"", "file-abc-1x1-jpg", "image-abc-jpg", "image-abc-0x10-png"} {
		_, err := b.URL(bad, Options{})
		assert.ErrorIs(t, err, ErrInvalidRef, bad)
	}
}
