// Package normalizer provides a client for the external drug-name
// normalization service. The service cleans up noisy user-supplied
// brand names ("advil extra-strength!!" -> "advil extra strength"); it
// may be slow or down, and callers are expected to fall back to the
// raw input when it is.
package normalizer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/genericrx/backend/internal/domain"
)

type normalizeRequest struct {
	Name string `json:"name"`
}

type normalizeResponse struct {
	Normalized string `json:"normalized"`
}

// Client talks to the normalization service. It implements
// domain.NameNormalizer.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each normalization call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a normalization client.
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Normalize returns the service's cleaned-up form of name. Any
// transport failure, non-200 status, or empty response is reported as
// ErrNormalizationFailed; the caller decides the fallback.
func (c *Client) Normalize(ctx context.Context, name string) (string, error) {
	payload, err := json.Marshal(normalizeRequest{Name: name})
	if err != nil {
		return "", eris.Wrap(err, "normalizer: encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/normalize", bytes.NewReader(payload))
	if err != nil {
		return "", eris.Wrap(err, "normalizer: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrapf(domain.ErrNormalizationFailed, "transport: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", eris.Wrapf(domain.ErrNormalizationFailed, "status %d: %s", resp.StatusCode, string(body))
	}

	var decoded normalizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", eris.Wrapf(domain.ErrNormalizationFailed, "decode: %v", err)
	}

	if decoded.Normalized == "" {
		return "", eris.Wrap(domain.ErrNormalizationFailed, "empty normalized name")
	}

	return decoded.Normalized, nil
}
