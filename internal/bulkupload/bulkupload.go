// Package bulkupload appends a folder of images to a portfolio gallery.
package bulkupload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

// ErrUploadsFailed is returned after a run in which at least one file failed
// to upload. The successful files have been saved by then.
var ErrUploadsFailed = errors.New("some images failed to upload")

// Store is the part of the content store the batch needs.
type Store interface {
	studio.ContentStore
	GetDocumentBySlug(ctx context.Context, kind studio.DocumentKind, slug string) (*studio.Document, error)
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Runner uploads folders into portfolio galleries.
type Runner struct {
	store  Store
	out    io.Writer
	logger *slog.Logger
	newKey func() string
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where progress lines are printed. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithKeyFunc overrides reference key generation.
func WithKeyFunc(fn func() string) Option {
	return func(r *Runner) {
		r.newKey = fn
	}
}

// NewRunner creates a Runner.
func NewRunner(store Store, opts ...Option) *Runner {
	r := &Runner{
		store:  store,
		out:    os.Stdout,
		logger: slog.Default(),
		newKey: studio.NewKey,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run uploads every image in folder, one at a time, and appends the
// successful ones to the gallery of the portfolio with slug in a single
// revision-checked write. Failed files are reported and skipped; Run then
// returns ErrUploadsFailed together with the report.
func (r *Runner) Run(ctx context.Context, slug, folder string) (*Report, error) {
	report := &Report{Slug: slug, Folder: folder, StartedAt: r.now()}
	defer func() { report.FinishedAt = r.now() }()

	r.printf("%s\n", headerStyle.Render("Looking for images in "+folder))
	files, err := ScanFolder(folder)
	if err != nil {
		return report, err
	}
	report.Found = len(files)
	r.printf("Found %d images\n", len(files))
	if len(files) == 0 {
		r.printf("%s\n", dimStyle.Render("No images found, nothing to do"))
		return report, nil
	}

	doc, err := r.store.GetDocumentBySlug(ctx, studio.KindPortfolio, slug)
	if err != nil {
		if errors.Is(err, studio.ErrDocumentNotFound) {
			return report, fmt.Errorf("portfolio %q not found: %w", slug, err)
		}
		return report, fmt.Errorf("look up portfolio %q: %w", slug, err)
	}
	report.DocumentID = doc.ID.String()
	report.Title = doc.Title
	r.printf("%s\n\n", okStyle.Render("Found portfolio: "+doc.Title))

	existing := doc.Images()
	uploader := studio.NewUploader(r.store, studio.WithUploaderKeyFunc(r.newKey))
	var batch studio.Collection
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		name := filepath.Base(path)
		r.printf("  Uploading %s...\n", name)

		ref, err := r.uploadFile(ctx, uploader, path)
		if err != nil {
			r.logger.Error("Failed to upload image", "file", path, "error", err)
			report.Failed = append(report.Failed, FailedFile{File: name, Error: err.Error()})
			r.printf("  %s\n", failStyle.Render(fmt.Sprintf("✗ %d/%d failed: %v", i+1, len(files), err)))
			continue
		}
		for studio.HasKey(existing, ref.Key) || studio.HasKey(batch, ref.Key) {
			ref.Key = r.newKey()
		}
		batch = append(batch, ref)
		report.Uploaded = append(report.Uploaded, UploadedFile{File: name, Key: ref.Key, AssetRef: ref.AssetRef})
		r.printf("  %s\n", okStyle.Render(fmt.Sprintf("✓ %d/%d done", i+1, len(files))))
	}

	if len(batch) > 0 {
		r.printf("\nUpdating portfolio...\n")
		updated, err := r.store.ReplaceField(ctx, studio.ReplaceFieldRequest{
			DocumentID: doc.ID,
			Field:      studio.FieldImages,
			Images:     studio.Append(existing, batch...),
			IfRevision: doc.Revision,
		})
		if err != nil {
			return report, fmt.Errorf("save gallery of %q: %w", slug, err)
		}
		report.Revision = updated.Revision
	}

	r.printf("\n%s\n", headerStyle.Render(fmt.Sprintf("Done! Added %d images to %q", len(batch), doc.Title)))
	if len(report.Failed) > 0 {
		r.printf("%s\n", failStyle.Render(fmt.Sprintf("%d images failed", len(report.Failed))))
		return report, fmt.Errorf("%d of %d: %w", len(report.Failed), len(files), ErrUploadsFailed)
	}
	return report, nil
}

func (r *Runner) uploadFile(ctx context.Context, uploader *studio.Uploader, path string) (studio.ImageReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return studio.ImageReference{}, &studio.UploadError{FileName: filepath.Base(path), Err: err}
	}
	defer f.Close()
	return uploader.Upload(ctx, studio.File{
		Name:     filepath.Base(path),
		MimeType: MimeType(path),
		Body:     f,
	})
}

func (r *Runner) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}
