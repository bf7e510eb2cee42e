package countstore

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type windowCount struct {
	Count       int
	WindowStart time.Time
}

// MemCountStore keeps counters in process memory. Safe for concurrent use:
// check-and-increment happens inside a single atomic map compute, so
// concurrent Reserve calls for the same counter are serialized.
//
// Windows are fixed-horizon: the window starts at the first increment after
// the previous window lapsed, and the whole counter resets once the window is
// older than the configured duration.
type MemCountStore struct {
	window time.Duration
	counts *xsync.MapOf[string, windowCount]
}

func NewMemCountStore(window time.Duration) *MemCountStore {
	return &MemCountStore{
		window: window,
		counts: xsync.NewMapOf[string, windowCount](),
	}
}

func (s *MemCountStore) GetCount(ctx context.Context, name, val string) (int, error) {
	v, ok := s.counts.Load(counterKey(name, val))
	if !ok || time.Since(v.WindowStart) >= s.window {
		return 0, nil
	}
	return v.Count, nil
}

func (s *MemCountStore) Increment(ctx context.Context, name, val string) error {
	now := time.Now()
	s.counts.Compute(counterKey(name, val), func(v windowCount, loaded bool) (windowCount, bool) {
		if !loaded || now.Sub(v.WindowStart) >= s.window {
			v = windowCount{WindowStart: now}
		}
		v.Count++
		return v, false
	})
	return nil
}

func (s *MemCountStore) Reserve(ctx context.Context, name, val string, cap int) (int, bool, error) {
	now := time.Now()
	granted := false
	v, _ := s.counts.Compute(counterKey(name, val), func(v windowCount, loaded bool) (windowCount, bool) {
		if !loaded || now.Sub(v.WindowStart) >= s.window {
			v = windowCount{WindowStart: now}
		}
		if v.Count >= cap {
			granted = false
			return v, false
		}
		v.Count++
		granted = true
		return v, false
	})
	return v.Count, granted, nil
}
