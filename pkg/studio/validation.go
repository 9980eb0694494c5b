package studio

import (
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// MaxSlugLength is the longest accepted slug.
const MaxSlugLength = 96

// DateLayout is the layout of Document.Date.
const DateLayout = "2006-01-02"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slugify derives a slug from a title with Polish transliteration rules
// ("&" reads as "i"), cut to MaxSlugLength.
func Slugify(title string) string {
	out := slug.MakeLang(title, "pl")
	if len(out) > MaxSlugLength {
		out = strings.TrimRight(out[:MaxSlugLength], "-")
	}
	return out
}

// ValidateDocument checks the fields shared by every kind and the body that
// matches Kind.
func ValidateDocument(doc *Document) error {
	if !doc.Kind.IsValid() {
		return &ValidationError{Field: "kind", Reason: "must be portfolio or report"}
	}
	if strings.TrimSpace(doc.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if err := validateSlug(doc.Slug); err != nil {
		return err
	}
	if doc.Date != "" {
		if _, err := time.Parse(DateLayout, doc.Date); err != nil {
			return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
	}

	switch doc.Kind {
	case KindPortfolio:
		if doc.Portfolio == nil || doc.Report != nil {
			return &ValidationError{Field: "portfolio", Reason: "portfolio documents carry only a portfolio body"}
		}
		if !doc.Portfolio.Category.IsValid() {
			return &ValidationError{Field: "category", Reason: "unknown category"}
		}
		if err := validateCover(doc.Portfolio.CoverImage); err != nil {
			return err
		}
		return Validate(doc.Portfolio.Images)
	case KindReport:
		if doc.Report == nil || doc.Portfolio != nil {
			return &ValidationError{Field: "report", Reason: "report documents carry only a report body"}
		}
		if err := validateCover(doc.Report.CoverImage); err != nil {
			return err
		}
		return Validate(doc.Report.Images)
	}
	return nil
}

func validateSlug(slug string) error {
	if slug == "" {
		return &ValidationError{Field: "slug", Reason: "is required"}
	}
	if len(slug) > MaxSlugLength {
		return &ValidationError{Field: "slug", Reason: "is too long"}
	}
	if !slugPattern.MatchString(slug) {
		return &ValidationError{Field: "slug", Reason: "must contain only lowercase letters, digits and single hyphens"}
	}
	return nil
}

// validateCover accepts a missing cover; documents get one after their first upload.
func validateCover(cover *ImageReference) error {
	if cover == nil {
		return nil
	}
	if cover.AssetRef == "" {
		return &ValidationError{Field: "cover_image.asset_ref", Reason: "is required"}
	}
	return nil
}
