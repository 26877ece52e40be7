package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/genericrx/backend/internal/domain"
)

// DefaultFetchConcurrency caps in-flight store lookups per request.
const DefaultFetchConcurrency = 10

// LookupStatus classifies the outcome of a single store lookup.
type LookupStatus int

const (
	// LookupFound means the key resolved to a non-empty record.
	LookupFound LookupStatus = iota
	// LookupNotFound means the store has no record for the key.
	LookupNotFound
	// LookupError means the lookup itself failed in transit.
	LookupError
)

// LookupResult is the explicit outcome of one lookup. Callers branch on
// Status instead of catching errors from the store.
type LookupResult struct {
	Status LookupStatus
	Text   string
}

// KeyRequest identifies one record to probe.
type KeyRequest struct {
	Key       string
	Namespace string
}

// Fetcher issues store lookups with bounded concurrency.
type Fetcher struct {
	store domain.RecordStore
	limit int
}

// NewFetcher creates a Fetcher. A non-positive limit falls back to
// DefaultFetchConcurrency.
func NewFetcher(store domain.RecordStore, limit int) *Fetcher {
	if limit < 1 {
		limit = DefaultFetchConcurrency
	}
	return &Fetcher{
		store: store,
		limit: limit,
	}
}

// FetchOne looks up a single key in a namespace. Transport failures are
// logged and reported as LookupError; a missing or empty record is
// LookupNotFound. Never returns an error.
func (f *Fetcher) FetchOne(ctx context.Context, key, namespace string) LookupResult {
	records, err := f.store.Fetch(ctx, []string{key}, namespace)
	if err != nil {
		zap.L().Warn("fetcher: store lookup failed",
			zap.String("key", key),
			zap.String("namespace", namespace),
			zap.Error(err),
		)
		return LookupResult{Status: LookupError}
	}

	record, ok := records[key]
	if !ok || record.Text == "" {
		return LookupResult{Status: LookupNotFound}
	}

	return LookupResult{Status: LookupFound, Text: record.Text}
}

// FetchMany probes every (key, namespace) pair concurrently and returns
// the keys that resolved to a record. Each pair is an independent task;
// a failed lookup never aborts the batch, the key is simply absent from
// the result. Completion order does not matter: the result is a keyed
// map the caller merges deterministically.
func (f *Fetcher) FetchMany(ctx context.Context, requests []KeyRequest) map[string]LookupResult {
	results := make(map[string]LookupResult, len(requests))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(f.limit)

	for _, req := range requests {
		req := req
		g.Go(func() error {
			result := f.FetchOne(ctx, req.Key, req.Namespace)
			if result.Status != LookupFound {
				return nil
			}

			mu.Lock()
			results[req.Key] = result
			mu.Unlock()
			return nil
		})
	}

	// Tasks never return errors, so Wait only synchronizes.
	_ = g.Wait()

	return results
}
