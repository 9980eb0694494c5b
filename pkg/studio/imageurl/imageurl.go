// Package imageurl builds public image URLs for asset refs. Resizing and
// format negotiation are left to the image CDN in front of /images, which
// reads them from the query string.
package imageurl

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

// ErrInvalidRef is returned for refs that are not image asset refs.
var ErrInvalidRef = errors.New("invalid image ref")

// Fit modes understood by the CDN.
const (
	FitClip = "clip"
	FitCrop = "crop"
	FitMax  = "max"
)

// Options are the CDN transformation parameters.
type Options struct {
	Width  int
	Height int
	Fit    string
	// Auto asks the CDN to pick the best format the client accepts.
	Auto bool
}

// Builder builds URLs against BaseURL (e.g. "https://cdn.example.com").
// An empty BaseURL yields root-relative URLs.
type Builder struct {
	BaseURL string
}

// New creates a Builder.
func New(baseURL string) *Builder {
	return &Builder{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// URL returns the URL of ref with opts applied.
func (b *Builder) URL(ref string, opts Options) (string, error) {
	parts, err := studio.ParseAssetRef(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	u := strings.TrimSuffix(b.BaseURL, "/") + "/images/" + parts.FileName()
	if q := opts.query(); len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u, nil
}

// Site is the URL used on public pages: original size, format picked by the CDN.
func (b *Builder) Site(ref string) (string, error) {
	return b.URL(ref, Options{Auto: true})
}

// Thumbnail is the square crop shown in the studio gallery editor.
func (b *Builder) Thumbnail(ref string) (string, error) {
	return b.URL(ref, Options{Width: 150, Height: 150, Fit: FitCrop})
}

func (o Options) query() url.Values {
	q := url.Values{}
	if o.Width > 0 {
		q.Set("w", strconv.Itoa(o.Width))
	}
	if o.Height > 0 {
		q.Set("h", strconv.Itoa(o.Height))
	}
	if o.Fit != "" {
		q.Set("fit", o.Fit)
	}
	if o.Auto {
		q.Set("auto", "format")
	}
	return q
}
