package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/auth"
	"github.com/fiodorowphotography/studio/pkg/studio/imageurl"
	"github.com/fiodorowphotography/studio/pkg/studio/mail"
)

// Config wires the HTTP surface of the content store.
type Config struct {
	Service studio.Service
	// Mailer relays contact messages; nil when no provider is configured.
	Mailer mail.Mailer
	// JWTSecret guards the write routes. Empty leaves them open, which is
	// only allowed in development.
	JWTSecret string
	// ImageBaseURL is the CDN origin in front of /images.
	ImageBaseURL string
	// SiteURL is the public site origin used in the sitemap.
	SiteURL     string
	Development bool
	Logger      *slog.Logger
}

// Register adds all routes to r.
func Register(r chi.Router, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	images := imageurl.New(cfg.ImageBaseURL)

	documents := NewDocumentsHandler(cfg.Service, images)
	assets := NewAssetsHandler(cfg.Service, images)
	gallery := NewGalleryHandler(cfg.Service, images, logger)
	documents.OnChange(gallery.Forget)
	contact := NewContactHandler(cfg.Mailer, cfg.Development, logger)
	sitemap := NewSitemapHandler(cfg.Service, cfg.SiteURL)

	var protect func(http.Handler) http.Handler
	if cfg.JWTSecret != "" {
		ja, err := auth.New(cfg.JWTSecret)
		if err != nil {
			return err
		}
		protect = auth.Middleware(ja)
	} else {
		logger.Warn("Write routes are not protected, set a JWT secret outside development")
	}

	r.Group(func(r chi.Router) {
		r.Use(compress)
		sitemap.Routes(r)

		r.Route("/api/v1", func(r chi.Router) {
			documents.PublicRoutes(r)
			contact.Routes(r)

			r.Group(func(r chi.Router) {
				if protect != nil {
					r.Use(protect)
				}
				documents.ProtectedRoutes(r)
				assets.ProtectedRoutes(r)
				gallery.Routes(r)
			})
		})
	})

	// Image bytes are already compressed.
	assets.SiteRoutes(r)
	return nil
}

func compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
