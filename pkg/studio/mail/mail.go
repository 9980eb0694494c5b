// Package mail relays contact form submissions to the studio inbox.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var (
	// ErrMissingFields is returned when name, email or message is empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidEmail is returned for a malformed sender address.
	ErrInvalidEmail = errors.New("invalid email address")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactMessage is a contact form submission.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Date    string `json:"date,omitempty"`
	Service string `json:"service,omitempty"`
	Message string `json:"message"`
}

// Validate checks the required fields and the sender address.
func (m ContactMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" || strings.TrimSpace(m.Message) == "" {
		return ErrMissingFields
	}
	if !emailPattern.MatchString(m.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// Subject is the subject line of the relayed email.
func (m ContactMessage) Subject() string {
	return fmt.Sprintf("Nowe zapytanie od %s - Fiodorow Photography", m.Name)
}

// Mailer delivers contact messages.
type Mailer interface {
	Send(ctx context.Context, msg ContactMessage) error
}

// ProviderError is a non-2xx answer from the mail provider.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mail provider returned %d: %s", e.StatusCode, e.Message)
}

// LogMailer only logs submissions. It stands in for a real provider in
// development.
type LogMailer struct {
	Logger *slog.Logger
}

// Send logs msg.
func (m LogMailer) Send(ctx context.Context, msg ContactMessage) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Contact form submission (not sent)",
		"name", msg.Name,
		"email", msg.Email,
		"phone", msg.Phone,
		"date", msg.Date,
		"service", msg.Service,
		"message", msg.Message,
	)
	return nil
}
