package session

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/guttosm/k4bridge/internal/domain/models"
)

const (
	DefaultTTL             = 30 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

// Store keeps finished conversions in memory until they expire. Entries are
// never mutated after Put, so readers may share them.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewStore creates a Store. Non-positive durations fall back to the defaults.
func NewStore(ttl, cleanup time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &Store{cache: cache.New(ttl, cleanup), ttl: ttl}
}

// Put stores conv under conv.ID and returns its expiry time.
func (s *Store) Put(conv *models.Conversion) time.Time {
	s.cache.Set(conv.ID, conv, cache.DefaultExpiration)
	return time.Now().Add(s.ttl)
}

// Get returns the conversion for id, or false when unknown or expired.
func (s *Store) Get(id string) (*models.Conversion, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	conv, ok := v.(*models.Conversion)
	return conv, ok
}

// Delete discards the conversion for id. It reports whether anything was removed.
func (s *Store) Delete(id string) bool {
	if _, ok := s.cache.Get(id); !ok {
		return false
	}
	s.cache.Delete(id)
	return true
}

// Len returns the number of live sessions (expired but not yet cleaned up included).
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// TTL is the lifetime of a new session.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
