package studio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetRef_RoundTrip(t *testing.T) {
	parts := AssetRefParts{ID: "3f786850e387550fdab836ed7e6dc881de23001b", Width: 4000, Height: 6000, Ext: "jpg"}
	ref := BuildAssetRef(parts)
	assert.Equal(t, "image-3f786850e387550fdab836ed7e6dc881de23001b-4000x6000-jpg", ref)

	parsed, err := ParseAssetRef(ref)
	require.NoError(t, err)
	assert.Equal(t, parts, parsed)
	assert.Equal(t, "3f786850e387550fdab836ed7e6dc881de23001b-4000x6000.jpg", parsed.FileName())

	fromFile, err := ParseAssetFileName(parsed.FileName())
	require.NoError(t, err)
	assert.Equal(t, parts, fromFile)
}

func TestParseAssetRef_Invalid(t *testing.T) {
	for _, ref := range []string{
		"",
		"image-abc-100x100",
		"file-abc-100x100-pdf",
		"image-abc-100-jpg",
		"image-abc-0x10-jpg",
		"image--10x10-jpg",
		"image-abc-10x10-",
	} {
		_, err := ParseAssetRef(ref)
		assert.ErrorIs(t, err, ErrInvalidAssetRef, ref)
	}
}

func TestParseAssetFileName_Invalid(t *testing.T) {
	for _, name := range []string{"", "abc.jpg", "abc-10x10", "abc-10x10.", "-10x10.jpg", "abc-axb.jpg"} {
		_, err := ParseAssetFileName(name)
		assert.ErrorIs(t, err, ErrInvalidAssetRef, name)
	}
}
