package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// Resend defaults.
const (
	DefaultResendURL = "https://api.resend.com"
	DefaultFrom      = "Fiodorow Photography <onboarding@resend.dev>"
	DefaultTo        = "fiodorowphotography@gmail.com"
)

// ResendConfig configures the Resend sender.
type ResendConfig struct {
	APIKey  string
	BaseURL string
	From    string
	To      []string
	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
}

// ResendMailer sends contact messages through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	to     []string
}

// NewResend creates a Resend sender.
func NewResend(cfg ResendConfig) (*ResendMailer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("resend api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultResendURL
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid resend url: %w", err)
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	if cfg.HTTPClient != nil {
		c := *cfg.HTTPClient
		httpClient = &c
	}
	next := httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	httpClient.Transport = statusTransport{next: next}

	client := resend.NewCustomClient(httpClient, cfg.APIKey)
	client.BaseURL = u

	m := &ResendMailer{client: client, from: cfg.From, to: cfg.To}
	if m.from == "" {
		m.from = DefaultFrom
	}
	if len(m.to) == 0 {
		m.to = []string{DefaultTo}
	}
	return m, nil
}

// Send delivers msg with the sender as reply-to address.
func (m *ResendMailer) Send(ctx context.Context, msg ContactMessage) error {
	html, err := RenderHTML(msg)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	var status int
	ctx = context.WithValue(ctx, statusKey{}, &status)
	_, err = m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      m.to,
		ReplyTo: msg.Email,
		Subject: msg.Subject(),
		Html:    html,
	})
	if err == nil {
		return nil
	}

	var uerr *url.Error
	if errors.As(err, &uerr) || status == 0 {
		return fmt.Errorf("send email: %w", err)
	}
	message := strings.TrimSpace(strings.TrimPrefix(err.Error(), "[ERROR]:"))
	if message == "" {
		message = "Unknown error"
	}
	return &ProviderError{StatusCode: status, Message: message}
}

type statusKey struct{}

// statusTransport records the provider's HTTP status for the request's Send
// call, so rejections can be told apart from transport failures.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err == nil {
		if status, ok := req.Context().Value(statusKey{}).(*int); ok {
			*status = resp.StatusCode
		}
	}
	return resp, err
}
