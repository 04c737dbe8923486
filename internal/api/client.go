// Package api wraps the detection service's HTTP surface: file upload,
// prediction and the liveness probe. The client keeps no state between calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/veriscope/veriscope/internal/detection"
)

const (
	defaultRequestTimeout = 120 * time.Second
	defaultHealthTimeout  = 3 * time.Second
)

// UploadResponse is the service's reply to a successful upload. Filename is
// the server-assigned token to use in a subsequent Predict call.
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// UploadError reports a failed upload. Message is the service-provided error
// when one was parseable, otherwise a generic fallback.
type UploadError struct {
	Message string
	cause   error
}

func (e *UploadError) Error() string { return e.Message }
func (e *UploadError) Unwrap() error { return e.cause }

// PredictionError reports a failed prediction under the same contract as
// UploadError.
type PredictionError struct {
	Message string
	cause   error
}

func (e *PredictionError) Error() string { return e.Message }
func (e *PredictionError) Unwrap() error { return e.cause }

// Client talks to one detection service instance.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	healthTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHealthTimeout overrides the hard per-probe deadline for CheckHealth.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) { c.healthTimeout = d }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: defaultRequestTimeout},
		healthTimeout: defaultHealthTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends the file content plus its derived media-kind tag to the
// service and returns the server-assigned filename token.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader, contentType string) (*UploadResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, &UploadError{Message: "Upload failed", cause: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &UploadError{Message: "Upload failed", cause: err}
	}
	kind := detection.KindForContentType(contentType)
	if err := writer.WriteField("type", string(kind)); err != nil {
		return nil, &UploadError{Message: "Upload failed", cause: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &UploadError{Message: "Upload failed", cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return nil, &UploadError{Message: "Upload failed", cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UploadError{Message: fmt.Sprintf("Upload failed: %v", err), cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UploadError{Message: serviceError(resp.Body, "Upload failed")}
	}

	var upload UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return nil, &UploadError{Message: "Upload failed", cause: err}
	}
	return &upload, nil
}

// Predict requests analysis of a previously uploaded file.
func (c *Client) Predict(ctx context.Context, filename string, kind detection.MediaKind) (*detection.Result, error) {
	payload, err := json.Marshal(map[string]string{
		"filename": filename,
		"type":     string(kind),
	})
	if err != nil {
		return nil, &PredictionError{Message: "Prediction failed", cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, &PredictionError{Message: "Prediction failed", cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &PredictionError{Message: fmt.Sprintf("Prediction failed: %v", err), cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &PredictionError{Message: serviceError(resp.Body, "Prediction failed")}
	}

	var result detection.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &PredictionError{Message: "Prediction failed", cause: err}
	}
	return &result, nil
}

// CheckHealth probes the liveness endpoint with a hard deadline. Any failure
// collapses to false; this call never returns an error.
func (c *Client) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// serviceError extracts the service's {"error": "..."} message from a
// non-success body, degrading to fallback when the body is not parseable.
func serviceError(body io.Reader, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fallback
}
