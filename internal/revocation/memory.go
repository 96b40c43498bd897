package revocation

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// memoryItem is a stored value with its expiry.
type memoryItem struct {
	value      []byte
	expiration time.Time
}

// MemoryStorage is a size bounded in-process fiber.Storage.
// When full the least recently used entry is dropped even if it did not expire.
type MemoryStorage struct {
	cache *lru.Cache[string, memoryItem]
	now   func() time.Time
}

// NewMemoryStorage creates a MemoryStorage holding up to size entries.
func NewMemoryStorage(size int) (*MemoryStorage, error) {
	c, err := lru.New[string, memoryItem](size)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &MemoryStorage{cache: c, now: time.Now}, nil
}

// Get implements fiber.Storage. A missing or expired key returns nil, nil.
// Get never removes entries; expired ones are overwritten by Set or age out of the LRU.
func (m *MemoryStorage) Get(key string) ([]byte, error) {
	item, ok := m.cache.Peek(key)
	if !ok {
		return nil, nil
	}

	if !item.expiration.IsZero() && !m.now().Before(item.expiration) {
		return nil, nil
	}

	return item.value, nil
}

// Set implements fiber.Storage. A zero exp never expires.
func (m *MemoryStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	item := memoryItem{value: val}
	if exp > 0 {
		item.expiration = m.now().Add(exp)
	}

	if evicted := m.cache.Add(key, item); evicted {
		log.Warn().Int("size", m.cache.Len()).Msg("revocation list is full, dropped the least recently used entry")
	}

	return nil
}

// Delete implements fiber.Storage.
func (m *MemoryStorage) Delete(key string) error {
	m.cache.Remove(key)
	return nil
}

// Reset implements fiber.Storage.
func (m *MemoryStorage) Reset() error {
	m.cache.Purge()
	return nil
}

// Close implements fiber.Storage.
func (m *MemoryStorage) Close() error {
	return nil
}
