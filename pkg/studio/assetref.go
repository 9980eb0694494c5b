package studio

import (
	"fmt"
	"strconv"
	"strings"
)

// AssetRefParts are the components encoded in an asset ref of the form
// image-<id>-<W>x<H>-<ext>.
type AssetRefParts struct {
	ID     string
	Width  int
	Height int
	Ext    string
}

// BuildAssetRef encodes parts into an asset ref.
func BuildAssetRef(p AssetRefParts) string {
	return fmt.Sprintf("image-%s-%dx%d-%s", p.ID, p.Width, p.Height, p.Ext)
}

// FileName is the public file name of the asset: <id>-<W>x<H>.<ext>.
func (p AssetRefParts) FileName() string {
	return fmt.Sprintf("%s-%dx%d.%s", p.ID, p.Width, p.Height, p.Ext)
}

// Ref returns the asset ref for p.
func (p AssetRefParts) Ref() string {
	return BuildAssetRef(p)
}

// ParseAssetRef decodes an asset ref.
func ParseAssetRef(ref string) (AssetRefParts, error) {
	fields := strings.Split(ref, "-")
	if len(fields) != 4 || fields[0] != "image" || fields[1] == "" || fields[3] == "" {
		return AssetRefParts{}, fmt.Errorf("%q: %w", ref, ErrInvalidAssetRef)
	}
	w, h, err := parseDimensions(fields[2])
	if err != nil {
		return AssetRefParts{}, fmt.Errorf("%q: %w", ref, ErrInvalidAssetRef)
	}
	return AssetRefParts{ID: fields[1], Width: w, Height: h, Ext: fields[3]}, nil
}

// ParseAssetFileName decodes a public file name (<id>-<W>x<H>.<ext>) back
// into ref parts.
func ParseAssetFileName(name string) (AssetRefParts, error) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return AssetRefParts{}, fmt.Errorf("%q: %w", name, ErrInvalidAssetRef)
	}
	base, ext := name[:dot], name[dot+1:]
	dash := strings.LastIndexByte(base, '-')
	if dash <= 0 {
		return AssetRefParts{}, fmt.Errorf("%q: %w", name, ErrInvalidAssetRef)
	}
	w, h, err := parseDimensions(base[dash+1:])
	if err != nil {
		return AssetRefParts{}, fmt.Errorf("%q: %w", name, ErrInvalidAssetRef)
	}
	return AssetRefParts{ID: base[:dash], Width: w, Height: h, Ext: ext}, nil
}

func parseDimensions(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("missing dimensions separator")
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("bad width %q", ws)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("bad height %q", hs)
	}
	return w, h, nil
}
