package api

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

// Public page paths of the site.
var staticPages = []string{"/", "/portfolio", "/reportaze", "/kontakt"}

var kindPaths = map[studio.DocumentKind]string{
	studio.KindPortfolio: "/portfolio/",
	studio.KindReport:    "/reportaze/",
}

// SitemapHandler renders /sitemap.xml from the stored documents.
type SitemapHandler struct {
	service studio.Service
	siteURL string
}

// NewSitemapHandler creates a SitemapHandler for the site at siteURL.
func NewSitemapHandler(service studio.Service, siteURL string) *SitemapHandler {
	return &SitemapHandler{service: service, siteURL: strings.TrimSuffix(siteURL, "/")}
}

// Routes registers the sitemap endpoint.
func (h *SitemapHandler) Routes(r chi.Router) {
	r.Get("/sitemap.xml", h.ServeSitemap)
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// ServeSitemap writes the sitemap.
func (h *SitemapHandler) ServeSitemap(w http.ResponseWriter, r *http.Request) {
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, sitemapURL{Loc: h.siteURL + p})
	}

	for _, kind := range []studio.DocumentKind{studio.KindPortfolio, studio.KindReport} {
		docs, err := h.service.ListDocuments(r.Context(), studio.ListDocumentsRequest{Kind: kind, SortBy: studio.SortByDate})
		if err != nil {
			slog.Error("Failed to list documents for sitemap", "kind", kind, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		for _, doc := range docs {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:     h.siteURL + kindPaths[kind] + doc.Slug,
				LastMod: doc.UpdatedAt.UTC().Format("2006-01-02"),
			})
		}
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		slog.Error("Failed to encode sitemap", "error", err)
	}
}
