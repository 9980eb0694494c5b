package studio

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// DocumentKind identifies the schema of a document.
type DocumentKind string

// Document kinds (typed).
const (
	KindPortfolio DocumentKind = "portfolio"
	KindReport    DocumentKind = "report"
)

// IsValid reports whether k is a known document kind.
func (k DocumentKind) IsValid() bool {
	return k == KindPortfolio || k == KindReport
}

// Category is the portfolio session category.
type Category string

// Portfolio categories (typed).
const (
	CategoryWeddingReport Category = "reportaz-slubny"
	CategoryAfterWedding  Category = "sesja-poslubna"
	CategoryEngagement    Category = "sesja-narzeczenska"
)

// categoryLabels holds the Polish display labels shown on the site.
var categoryLabels = map[Category]string{
	CategoryWeddingReport: "Reportaż ślubny",
	CategoryAfterWedding:  "Sesja poślubna",
	CategoryEngagement:    "Sesja narzeczeńska",
}

// Categories returns all portfolio categories in display order.
func Categories() []Category {
	return []Category{CategoryWeddingReport, CategoryAfterWedding, CategoryEngagement}
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label, or the raw value for unknown categories.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// FieldImages is the name of the gallery field on every document kind.
const FieldImages = "images"

// ImageReference is one entry of an image collection. Key identifies the
// entry and survives reorders; AssetRef points at the stored binary.
type ImageReference struct {
	Key      string `json:"key"`
	AssetRef string `json:"asset_ref"`
	Caption  string `json:"caption,omitempty"`
}

// Collection is an ordered sequence of image references. Order is display
// order.
type Collection []ImageReference

// Progress describes an in-flight upload batch. The zero value means idle.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// File is a single file handed to the upload pipeline.
type File struct {
	Name     string
	MimeType string
	Body     io.Reader
}

// Asset is an uploaded image blob.
type Asset struct {
	Ref            string    `json:"ref"`
	FileName       string    `json:"file_name,omitempty"`
	MimeType       string    `json:"mime_type"`
	Size           int64     `json:"size"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	Checksum       string    `json:"checksum"`
	ObjectKey      string    `json:"object_key"`
	StorageBackend string    `json:"storage_backend"`
	CreatedAt      time.Time `json:"created_at"`
}

// Document is a content record. Exactly one of Portfolio or Report is set and
// it must match Kind.
type Document struct {
	ID        uuid.UUID    `json:"id"`
	Kind      DocumentKind `json:"kind"`
	Title     string       `json:"title"`
	Slug      string       `json:"slug"`
	Date      string       `json:"date,omitempty"` // YYYY-MM-DD
	Revision  string       `json:"revision"`
	Portfolio *Portfolio   `json:"portfolio,omitempty"`
	Report    *Report      `json:"report,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	DeletedAt *time.Time   `json:"deleted_at,omitempty"`
}

// Portfolio is the body of a portfolio session document.
type Portfolio struct {
	Category    Category        `json:"category"`
	Location    string          `json:"location,omitempty"`
	Description string          `json:"description,omitempty"`
	CoverImage  *ImageReference `json:"cover_image,omitempty"`
	Images      Collection      `json:"images"`
	Featured    bool            `json:"featured"`
	Order       *int            `json:"order,omitempty"`
}

// Report is the body of a wedding report document. Story is markdown.
type Report struct {
	Venue      string          `json:"venue,omitempty"`
	Location   string          `json:"location,omitempty"`
	Excerpt    string          `json:"excerpt,omitempty"`
	Story      string          `json:"story,omitempty"`
	CoverImage *ImageReference `json:"cover_image,omitempty"`
	Images     Collection      `json:"images"`
	Featured   bool            `json:"featured"`
}

// Images returns the document's gallery, or nil when the body is missing.
func (d *Document) Images() Collection {
	switch {
	case d.Portfolio != nil:
		return d.Portfolio.Images
	case d.Report != nil:
		return d.Report.Images
	}
	return nil
}

// Featured reports whether the document is shown on the home page.
func (d *Document) Featured() bool {
	switch {
	case d.Portfolio != nil:
		return d.Portfolio.Featured
	case d.Report != nil:
		return d.Report.Featured
	}
	return false
}

// CoverImage returns the cover reference, if any.
func (d *Document) CoverImage() *ImageReference {
	switch {
	case d.Portfolio != nil:
		return d.Portfolio.CoverImage
	case d.Report != nil:
		return d.Report.CoverImage
	}
	return nil
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := *d
	if d.Portfolio != nil {
		p := *d.Portfolio
		p.Images = cloneCollection(d.Portfolio.Images)
		if d.Portfolio.CoverImage != nil {
			cover := *d.Portfolio.CoverImage
			p.CoverImage = &cover
		}
		if d.Portfolio.Order != nil {
			order := *d.Portfolio.Order
			p.Order = &order
		}
		c.Portfolio = &p
	}
	if d.Report != nil {
		r := *d.Report
		r.Images = cloneCollection(d.Report.Images)
		if d.Report.CoverImage != nil {
			cover := *d.Report.CoverImage
			r.CoverImage = &cover
		}
		c.Report = &r
	}
	if d.DeletedAt != nil {
		t := *d.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneCollection(c Collection) Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// setImages replaces the gallery on whichever body is present.
func (d *Document) setImages(images Collection) {
	switch {
	case d.Portfolio != nil:
		d.Portfolio.Images = images
	case d.Report != nil:
		d.Report.Images = images
	}
}

// DocumentFilter narrows repository listings.
type DocumentFilter struct {
	Kind           DocumentKind
	IncludeDeleted bool
}

// SortBy selects the listing order.
type SortBy string

// Listing orders.
const (
	// SortByOrder sorts by the manual order field (unset last), then date descending.
	SortByOrder SortBy = "order"
	// SortByDate sorts by date descending.
	SortByDate SortBy = "date"
)

// CheckField returns ErrUnknownField unless field names an image collection.
func CheckField(field string) error {
	if field != FieldImages {
		return fmt.Errorf("field %q: %w", field, ErrUnknownField)
	}
	return nil
}
