// Package pinecone provides a client for the vector store's fetch API.
// The index is used purely as an exact-key lookup table: no similarity
// search, just ids in, text records out.
package pinecone

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/genericrx/backend/internal/domain"
)

const maxAttempts = 3

// fetchResponse mirrors the store's fetch payload: a map of id to
// vector entry, of which only the metadata text matters here.
type fetchResponse struct {
	Vectors map[string]vectorEntry `json:"vectors"`
}

type vectorEntry struct {
	ID       string         `json:"id"`
	Metadata vectorMetadata `json:"metadata"`
}

type vectorMetadata struct {
	Text string `json:"text"`
}

// Client talks to the store's HTTP fetch endpoint. It implements
// domain.RecordStore.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit overrides the request rate cap.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a store client for the index at baseURL.
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
		// The fan-out multiplies lookups per request, so the limiter
		// smooths bursts against the hosted index.
		rateLimiter: rate.NewLimiter(rate.Limit(50), 10),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch looks up ids within a namespace and returns the subset that
// resolved, keyed by id. Missing ids are simply absent from the result.
// Transport failures and 5xx responses are retried with linear backoff
// before being reported.
func (c *Client) Fetch(ctx context.Context, ids []string, namespace string) (map[string]domain.RawRecord, error) {
	if len(ids) == 0 {
		return map[string]domain.RawRecord{}, nil
	}

	params := url.Values{}
	for _, id := range ids {
		params.Add("ids", id)
	}
	params.Add("namespace", namespace)

	reqURL := c.baseURL + "/vectors/fetch?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "pinecone: rate limiter")
		}

		body, retryable, err := c.doFetch(ctx, reqURL)
		if err != nil {
			lastErr = err
			if !retryable {
				break
			}
			zap.L().Warn("pinecone: fetch attempt failed",
				zap.Int("attempt", attempt),
				zap.String("namespace", namespace),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "pinecone: fetch canceled")
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
			continue
		}

		return decodeRecords(body, namespace)
	}

	return nil, eris.Wrap(lastErr, "pinecone: fetch")
}

// doFetch executes one fetch request. The second return reports whether
// the failure is worth retrying.
func (c *Client) doFetch(ctx context.Context, reqURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, eris.Wrap(err, "pinecone: build request")
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, eris.Wrapf(domain.ErrStoreUnavailable, "transport: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, eris.Wrap(err, "pinecone: read response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, false, nil
	case resp.StatusCode == http.StatusNotFound:
		// The index treats unknown ids as an empty result, not an
		// error; mirror that for index-level 404s.
		return []byte(`{"vectors":{}}`), false, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, eris.Wrapf(domain.ErrStoreUnavailable, "status %d", resp.StatusCode)
	default:
		return nil, false, eris.Wrapf(domain.ErrStoreUnavailable, "status %d: %s", resp.StatusCode, string(body))
	}
}

// decodeRecords converts a fetch payload into raw records, dropping
// entries without text.
func decodeRecords(body []byte, namespace string) (map[string]domain.RawRecord, error) {
	var payload fetchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "pinecone: decode response")
	}

	records := make(map[string]domain.RawRecord, len(payload.Vectors))
	for id, entry := range payload.Vectors {
		if entry.Metadata.Text == "" {
			continue
		}
		records[id] = domain.RawRecord{
			Key:       id,
			Namespace: namespace,
			Text:      entry.Metadata.Text,
		}
	}

	return records, nil
}
