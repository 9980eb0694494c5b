package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/fiodorowphotography/studio/pkg/studio"
	"github.com/fiodorowphotography/studio/pkg/studio/imageurl"
)

// maxMultipartMemory is how much of a multipart body is kept in memory
// before spilling to temp files.
const maxMultipartMemory = 32 << 20

// AssetsHandler uploads images and serves their bytes.
type AssetsHandler struct {
	service studio.Service
	images  *imageurl.Builder
}

// NewAssetsHandler creates an AssetsHandler.
func NewAssetsHandler(service studio.Service, images *imageurl.Builder) *AssetsHandler {
	if images == nil {
		images = imageurl.New("")
	}
	return &AssetsHandler{service: service, images: images}
}

// ProtectedRoutes registers the upload endpoint.
func (h *AssetsHandler) ProtectedRoutes(r chi.Router) {
	r.Post("/assets/images", h.UploadImage)
}

// SiteRoutes registers the public image endpoint.
func (h *AssetsHandler) SiteRoutes(r chi.Router) {
	r.Get("/images/{file}", h.ServeImage)
}

// AssetResponse is an uploaded asset with its public URL.
type AssetResponse struct {
	*studio.Asset
	URL string `json:"url"`
}

// UploadImage stores one image. The body is either multipart with a "file"
// part, or the raw image bytes with ?filename=.
func (h *AssetsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	var (
		body     io.Reader
		fileName string
		mimeType string
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			badRequest(w, r, "Invalid multipart body")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			badRequest(w, r, "Missing file part")
			return
		}
		defer file.Close()
		body = file
		fileName = header.Filename
		mimeType = header.Header.Get("Content-Type")
	} else {
		body = r.Body
		fileName = r.URL.Query().Get("filename")
		mimeType = mediaType
	}

	asset, err := h.service.UploadAsset(r.Context(), studio.UploadAssetRequest{
		FileName: fileName,
		MimeType: mimeType,
		Body:     body,
	})
	if err != nil {
		writeError(w, r, err, "Failed to upload image")
		return
	}

	u, err := h.images.Site(asset.Ref)
	if err != nil {
		writeError(w, r, err, "Failed to build image URL")
		return
	}
	slog.Info("Image uploaded", "ref", asset.Ref, "file_name", fileName, "size", asset.Size)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, AssetResponse{Asset: asset, URL: u})
}

// ServeImage streams the bytes of an asset by its public file name. CDN
// transformation parameters in the query are ignored here.
func (h *AssetsHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	parts, err := studio.ParseAssetFileName(chi.URLParam(r, "file"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	rc, asset, err := h.service.DownloadAsset(r.Context(), parts.Ref())
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to download image", "ref", parts.Ref(), "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", asset.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(asset.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("ETag", `"`+asset.Checksum+`"`)
	if r.Header.Get("If-None-Match") == `"`+asset.Checksum+`"` {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("Failed to stream image", "ref", asset.Ref, "error", err)
	}
}
