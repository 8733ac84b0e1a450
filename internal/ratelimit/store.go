package ratelimit

import "time"

// BucketStore holds the per-key request timestamp sequences behind the
// limiter. Implementations are plain containers; the Limiter serializes all
// access, so a store does not need its own locking.
type BucketStore interface {
	Get(key string) []time.Time
	Put(key string, stamps []time.Time)
	Delete(key string)
	Sweep(cutoff time.Time)
}

type memoryStore struct {
	buckets map[string][]time.Time
}

// NewMemoryStore returns the default in-process bucket store.
func NewMemoryStore() BucketStore {
	return &memoryStore{buckets: make(map[string][]time.Time)}
}

func (s *memoryStore) Get(key string) []time.Time {
	return s.buckets[key]
}

func (s *memoryStore) Put(key string, stamps []time.Time) {
	if len(stamps) == 0 {
		delete(s.buckets, key)
		return
	}
	s.buckets[key] = stamps
}

func (s *memoryStore) Delete(key string) {
	delete(s.buckets, key)
}

// Sweep drops timestamps at or before the cutoff across every bucket and
// removes buckets left empty.
func (s *memoryStore) Sweep(cutoff time.Time) {
	for key, stamps := range s.buckets {
		kept := stamps[:0]
		for _, stamp := range stamps {
			if stamp.After(cutoff) {
				kept = append(kept, stamp)
			}
		}
		if len(kept) == 0 {
			delete(s.buckets, key)
			continue
		}
		s.buckets[key] = kept
	}
}
