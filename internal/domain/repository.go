package domain

import "context"

// RecordStore defines the interface for the external key-value store.
// Fetch returns records for the subset of ids present in the namespace;
// a missing id is simply absent from the result map, not an error.
type RecordStore interface {
	Fetch(ctx context.Context, ids []string, namespace string) (map[string]RawRecord, error)
}

// NameNormalizer defines the interface for the external
// name-normalization service. Implementations may fail or be slow;
// callers are expected to fall back to the un-normalized input.
type NameNormalizer interface {
	Normalize(ctx context.Context, name string) (string, error)
}

// MemoCache defines the interface for the bounded normalization memo.
type MemoCache interface {
	Get(key string) (string, error)
	Add(key, value string)
}
