package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, studio.ErrInvalidDocument),
		errors.Is(err, studio.ErrUnknownField),
		errors.Is(err, studio.ErrIndexOutOfRange),
		errors.Is(err, studio.ErrInvalidAssetRef):
		return http.StatusBadRequest
	case errors.Is(err, studio.ErrDocumentNotFound),
		errors.Is(err, studio.ErrAssetNotFound),
		errors.Is(err, studio.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, studio.ErrRevisionMismatch), errors.Is(err, studio.ErrDuplicateSlug):
		return http.StatusConflict
	case errors.Is(err, studio.ErrAssetTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, studio.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "path", r.URL.Path, "error", err)
	} else {
		slog.Warn(msg, "path", r.URL.Path, "status", status, "error", err)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: msg})
}
