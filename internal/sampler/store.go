package sampler

import "time"

type stored[V any] struct {
	value V
	at    time.Time
}

// Store keeps the last value seen per entity along with when it was captured.
// Entries are upserted and never purged. A Store is owned by the sampling
// goroutine and is not safe for concurrent use.
type Store[K comparable, V any] struct {
	samples map[K]stored[V]
}

func NewStore[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{samples: make(map[K]stored[V])}
}

// Get returns the previous value for key and its capture time.
func (s *Store[K, V]) Get(key K) (V, time.Time, bool) {
	prev, ok := s.samples[key]
	return prev.value, prev.at, ok
}

func (s *Store[K, V]) Put(key K, value V, at time.Time) {
	s.samples[key] = stored[V]{value: value, at: at}
}

func (s *Store[K, V]) Len() int { return len(s.samples) }
