package normalizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genericrx/backend/internal/domain"
)

func TestNormalize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/normalize", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var req normalizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Advil  Extra-Strength!!", req.Name)

		json.NewEncoder(w).Encode(normalizeResponse{Normalized: "advil extra strength"})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	got, err := client.Normalize(context.Background(), "Advil  Extra-Strength!!")
	require.NoError(t, err)
	assert.Equal(t, "advil extra strength", got)
}

func TestNormalize_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	_, err := client.Normalize(context.Background(), "advil")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNormalizationFailed))
}

func TestNormalize_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(normalizeResponse{Normalized: ""})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	_, err := client.Normalize(context.Background(), "advil")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNormalizationFailed))
}

func TestNormalize_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(normalizeResponse{Normalized: "advil"})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL, WithTimeout(20*time.Millisecond))

	_, err := client.Normalize(context.Background(), "advil")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNormalizationFailed))
}

func TestNormalize_NoAPIKeySkipsAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(normalizeResponse{Normalized: "advil"})
	}))
	defer server.Close()

	client := NewClient("", server.URL)

	got, err := client.Normalize(context.Background(), "ADVIL")
	require.NoError(t, err)
	assert.Equal(t, "advil", got)
}
