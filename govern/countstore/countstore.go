// Package countstore tracks per-author governance counters over a rolling
// time window, backed by either process memory or Redis.
//
// Counters are namespaced by a counter name (eg, "submission") plus a value
// (usually an author identifier). Entries logically expire once they are older
// than the store's window; no separate cleanup pass is required.
package countstore

import (
	"context"
	"fmt"
)

type CountStore interface {
	// GetCount returns the current count for the counter within its window.
	GetCount(ctx context.Context, name, val string) (int, error)

	// Increment adds one to the counter, starting a fresh window if the
	// previous one has lapsed.
	Increment(ctx context.Context, name, val string) error

	// Reserve atomically increments the counter only if the post-increment
	// value would not exceed cap. Returns the current count and whether the
	// slot was granted. Two concurrent calls can never both take the last
	// slot below cap.
	Reserve(ctx context.Context, name, val string, cap int) (current int, ok bool, err error)
}

func counterKey(name, val string) string {
	return fmt.Sprintf("%s/%s", name, val)
}
