package pinecone

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genericrx/backend/internal/domain"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://index.example.com")

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://index.example.com", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors/fetch", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("Api-Key"))
		assert.Equal(t, "generic_drug", r.URL.Query().Get("namespace"))
		assert.ElementsMatch(t, []string{"ibuprofen:generic", "ibuprofen:cvs"}, r.URL.Query()["ids"])

		response := map[string]any{
			"vectors": map[string]any{
				"ibuprofen:generic": map[string]any{
					"id":       "ibuprofen:generic",
					"metadata": map[string]any{"text": "usage: pain relief; side effects: nausea"},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	records, err := client.Fetch(context.Background(), []string{"ibuprofen:generic", "ibuprofen:cvs"}, "generic_drug")
	require.NoError(t, err)

	require.Len(t, records, 1)
	record, ok := records["ibuprofen:generic"]
	require.True(t, ok)
	assert.Equal(t, "ibuprofen:generic", record.Key)
	assert.Equal(t, "generic_drug", record.Namespace)
	assert.Equal(t, "usage: pain relief; side effects: nausea", record.Text)
}

func TestFetch_EmptyIDs(t *testing.T) {
	client := NewClient("test-api-key", "https://index.example.com")

	records, err := client.Fetch(context.Background(), nil, "brand_drug")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetch_DropsRecordsWithoutText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{
			"vectors": map[string]any{
				"advil": map[string]any{
					"id":       "advil",
					"metadata": map[string]any{"text": "manufacturer: Pfizer"},
				},
				"empty": map[string]any{
					"id":       "empty",
					"metadata": map[string]any{},
				},
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	records, err := client.Fetch(context.Background(), []string{"advil", "empty"}, "brand_drug")
	require.NoError(t, err)

	assert.Len(t, records, 1)
	assert.Contains(t, records, "advil")
	assert.NotContains(t, records, "empty")
}

func TestFetch_NotFoundIsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	records, err := client.Fetch(context.Background(), []string{"advil"}, "brand_drug")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"vectors": map[string]any{
				"advil": map[string]any{
					"id":       "advil",
					"metadata": map[string]any{"text": "manufacturer: Pfizer"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, WithRateLimit(1000, 1000))

	records, err := client.Fetch(context.Background(), []string{"advil"}, "brand_drug")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, WithRateLimit(1000, 1000))

	_, err := client.Fetch(context.Background(), []string{"advil"}, "brand_drug")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestFetch_ClientErrorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad api key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", server.URL, WithRateLimit(1000, 1000))

	_, err := client.Fetch(context.Background(), []string{"advil"}, "brand_drug")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.Equal(t, int32(1), calls.Load())
}
