package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/genericrx/backend/internal/domain"
)

// entry is a single memoized value with its expiration
type entry struct {
	key        string
	value      string
	expiration time.Time
}

// LRUMemo is a thread-safe, capacity-bounded memo for normalization
// results. When full, the least-recently-used entry is evicted. The
// clock is injectable so expiry can be tested deterministically.
type LRUMemo struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mutex sync.Mutex
	order *list.List               // front = most recently used
	items map[string]*list.Element // key -> element whose Value is *entry
}

// Option configures an LRUMemo.
type Option func(*LRUMemo)

// WithClock sets the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(m *LRUMemo) {
		m.now = now
	}
}

// WithTTL sets an expiry on memoized entries. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(m *LRUMemo) {
		m.ttl = ttl
	}
}

// NewLRUMemo creates a memo bounded to capacity entries.
func NewLRUMemo(capacity int, opts ...Option) *LRUMemo {
	if capacity < 1 {
		capacity = 1
	}

	m := &LRUMemo{
		capacity: capacity,
		now:      time.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Get retrieves a memoized value, marking it as recently used.
func (m *LRUMemo) Get(key string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	elem, exists := m.items[key]
	if !exists {
		return "", domain.ErrCacheMiss
	}

	ent := elem.Value.(*entry)
	if m.ttl > 0 && m.now().After(ent.expiration) {
		m.order.Remove(elem)
		delete(m.items, key)
		return "", domain.ErrCacheMiss
	}

	m.order.MoveToFront(elem)
	return ent.value, nil
}

// Add stores a value, evicting the least-recently-used entry when the
// memo is at capacity. Adding an existing key refreshes its value,
// expiration, and recency.
func (m *LRUMemo) Add(key, value string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var expiration time.Time
	if m.ttl > 0 {
		expiration = m.now().Add(m.ttl)
	}

	if elem, exists := m.items[key]; exists {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiration = expiration
		m.order.MoveToFront(elem)
		return
	}

	if m.order.Len() >= m.capacity {
		oldest := m.order.Back()
		if oldest != nil {
			m.order.Remove(oldest)
			delete(m.items, oldest.Value.(*entry).key)
		}
	}

	m.items[key] = m.order.PushFront(&entry{
		key:        key,
		value:      value,
		expiration: expiration,
	})
}

// Len returns the current number of memoized entries
func (m *LRUMemo) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.order.Len()
}

// Clear removes all entries
func (m *LRUMemo) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.order.Init()
	m.items = make(map[string]*list.Element)
}
