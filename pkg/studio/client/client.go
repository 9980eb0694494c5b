// Package client talks to the studio HTTP API. Client satisfies
// studio.ContentStore, so editors and the batch uploader can run against a
// remote content store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fiodorowphotography/studio/pkg/studio"
)

// Client is an HTTP client for the studio API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	userAgent  string
}

// Option is a functional option for configuring a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithToken sets the bearer token sent with every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the API rooted at baseURL, e.g.
// "https://studio.example.com/api/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Minute, // large uploads
		},
		userAgent: "studioctl",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError is a non-2xx reply. It unwraps to the matching studio sentinel
// error when the status has one.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("studio api: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}

var _ studio.ContentStore = (*Client)(nil)

// GetDocument fetches a document by ID.
func (c *Client) GetDocument(ctx context.Context, id uuid.UUID) (*studio.Document, error) {
	var doc studio.Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+id.String(), nil, &doc, studio.ErrDocumentNotFound); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocumentBySlug fetches a document by kind and slug.
func (c *Client) GetDocumentBySlug(ctx context.Context, kind studio.DocumentKind, slug string) (*studio.Document, error) {
	q := url.Values{"kind": {string(kind)}, "slug": {slug}}
	var doc studio.Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents/lookup?"+q.Encode(), nil, &doc, studio.ErrDocumentNotFound); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments lists documents.
func (c *Client) ListDocuments(ctx context.Context, req studio.ListDocumentsRequest) ([]*studio.Document, error) {
	q := url.Values{}
	if req.Kind != "" {
		q.Set("kind", string(req.Kind))
	}
	if req.SortBy != "" {
		q.Set("sort", string(req.SortBy))
	}
	if req.FeaturedOnly {
		q.Set("featured", "true")
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprint(req.Limit))
	}
	var docs []*studio.Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents?"+q.Encode(), nil, &docs, nil); err != nil {
		return nil, err
	}
	return docs, nil
}

// ReplaceField overwrites a whole collection field.
func (c *Client) ReplaceField(ctx context.Context, req studio.ReplaceFieldRequest) (*studio.Document, error) {
	images := req.Images
	if images == nil {
		images = studio.Collection{}
	}
	body := struct {
		Images     studio.Collection `json:"images"`
		IfRevision string            `json:"if_revision,omitempty"`
	}{images, req.IfRevision}

	path := fmt.Sprintf("/documents/%s/fields/%s", req.DocumentID, url.PathEscape(req.Field))
	var doc studio.Document
	if err := c.doJSON(ctx, http.MethodPut, path, body, &doc, studio.ErrDocumentNotFound); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UploadAsset sends the raw image bytes.
func (c *Client) UploadAsset(ctx context.Context, req studio.UploadAssetRequest) (*studio.Asset, error) {
	if req.Body == nil {
		return nil, fmt.Errorf("%s: empty body: %w", req.FileName, studio.ErrUnsupportedMediaType)
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	path := "/assets/images?" + url.Values{"filename": {req.FileName}}.Encode()

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, req.Body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mimeType)

	var asset studio.Asset
	if err := c.do(httpReq, &asset, studio.ErrAssetNotFound); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}, notFound error) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out, notFound)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}, notFound error) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp, notFound)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response, notFound error) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else if s := strings.TrimSpace(string(raw)); s != "" {
		apiErr.Message = s
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		apiErr.kind = studio.ErrInvalidDocument
	case http.StatusNotFound:
		apiErr.kind = notFound
	case http.StatusConflict:
		apiErr.kind = studio.ErrRevisionMismatch
	case http.StatusRequestEntityTooLarge:
		apiErr.kind = studio.ErrAssetTooLarge
	case http.StatusUnsupportedMediaType:
		apiErr.kind = studio.ErrUnsupportedMediaType
	}
	return apiErr
}

// IsUnauthorized reports whether err is a rejected or missing token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}
