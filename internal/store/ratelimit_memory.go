package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/slugly/internal/ratelimit"
)

// sweepEvery is how many Record calls pass between removals of idle keys.
const sweepEvery = 1024

type window struct {
	size  time.Duration
	times []time.Time
}

// RateLimitMemoryStore keeps sliding windows in process. Used by tests and
// the memory store mode; counters are not shared between instances.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	records int
	now     func() time.Time
}

func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, size time.Duration) (ratelimit.Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	w, ok := s.windows[key]
	if !ok {
		w = &window{size: size}
		s.windows[key] = w
	}

	w.size = size
	w.times = append(prune(w.times, now.Add(-size)), now)

	s.records++
	if s.records%sweepEvery == 0 {
		s.sweep(now)
	}

	return ratelimit.Usage{Count: int64(len(w.times)), Oldest: w.times[0]}, nil
}

// Len reports how many keys currently hold requests.
func (s *RateLimitMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows)
}

func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, w := range s.windows {
		w.times = prune(w.times, now.Add(-w.size))
		if len(w.times) == 0 {
			delete(s.windows, key)
		}
	}
}

// prune drops timestamps at or before cutoff. times is sorted ascending.
func prune(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}

	return times[i:]
}

// Compile-time check.
var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
