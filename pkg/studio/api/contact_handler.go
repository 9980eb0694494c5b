package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/fiodorowphotography/studio/pkg/studio/mail"
)

// Contact form replies, shown to visitors as is.
const (
	msgMissingFields = "Wymagane pola: imię, email i wiadomość"
	msgInvalidEmail  = "Nieprawidłowy adres email"
	msgConfigError   = "Błąd konfiguracji serwera"
	msgSendFailed    = "Błąd wysyłania wiadomości"
	msgUnexpected    = "Wystąpił błąd podczas wysyłania wiadomości"
	msgSent          = "Wiadomość została wysłana"
	msgDevSaved      = "Wiadomość została zapisana (tryb deweloperski - brak klucza API)"
)

// ContactHandler relays contact form submissions.
type ContactHandler struct {
	mailer      mail.Mailer
	development bool
	logger      *slog.Logger
}

// NewContactHandler creates a ContactHandler. A nil mailer means no provider
// is configured: submissions are only logged in development and rejected
// otherwise.
func NewContactHandler(mailer mail.Mailer, development bool, logger *slog.Logger) *ContactHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactHandler{mailer: mailer, development: development, logger: logger}
}

// contactCORS lets the public site post the form from any origin.
var contactCORS = cors.Handler(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{http.MethodPost, http.MethodOptions},
	AllowedHeaders: []string{"Content-Type"},
	MaxAge:         300,
})

// Routes registers the contact endpoint. Every method is routed here so that
// non-POST requests get a JSON 405.
func (h *ContactHandler) Routes(r chi.Router) {
	r.With(contactCORS).HandleFunc("/contact", h.ServeHTTP)
}

// ContactResponse is the success reply.
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		h.reply(w, r, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	var msg mail.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.logger.Error("Failed to decode contact form", "error", err)
		h.reply(w, r, http.StatusInternalServerError, ErrorResponse{Error: msgUnexpected})
		return
	}

	switch err := msg.Validate(); {
	case errors.Is(err, mail.ErrMissingFields):
		h.reply(w, r, http.StatusBadRequest, ErrorResponse{Error: msgMissingFields})
		return
	case errors.Is(err, mail.ErrInvalidEmail):
		h.reply(w, r, http.StatusBadRequest, ErrorResponse{Error: msgInvalidEmail})
		return
	}

	if h.mailer == nil {
		h.logger.Error("Mail provider is not configured")
		if !h.development {
			h.reply(w, r, http.StatusInternalServerError, ErrorResponse{Error: msgConfigError})
			return
		}
		mail.LogMailer{Logger: h.logger}.Send(r.Context(), msg)
		h.reply(w, r, http.StatusOK, ContactResponse{Success: true, Message: msgDevSaved})
		return
	}

	if err := h.mailer.Send(r.Context(), msg); err != nil {
		var perr *mail.ProviderError
		if errors.As(err, &perr) {
			h.logger.Error("Mail provider rejected message", "status", perr.StatusCode, "error", perr.Message)
			h.reply(w, r, http.StatusInternalServerError, ErrorResponse{Error: msgSendFailed, Details: perr.Message})
			return
		}
		h.logger.Error("Failed to send contact message", "error", err)
		h.reply(w, r, http.StatusInternalServerError, ErrorResponse{Error: msgUnexpected})
		return
	}

	h.logger.Info("Contact message sent", "email", msg.Email)
	h.reply(w, r, http.StatusOK, ContactResponse{Success: true, Message: msgSent})
}

func (h *ContactHandler) reply(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
