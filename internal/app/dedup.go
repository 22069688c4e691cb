package app

import (
	"slices"
	"time"

	"github.com/hylla/lagerkoll/internal/domain"
)

// dedupRing remembers recently admitted (id, name, stock) triples inside a
// fixed-size, time-bounded window so bursts of identical deliveries collapse
// into one applied change. This is best-effort suppression of redeliveries,
// not exactly-once: semantically distinct events that coincide in value and
// time are still dropped.
type dedupRing struct {
	cap    int
	window time.Duration
	recs   []dedupRecord // oldest first
}

// dedupRecord is one admitted triple with its admission time.
type dedupRecord struct {
	key string
	at  time.Time
}

func newDedupRing(cap int, window time.Duration) *dedupRing {
	return &dedupRing{cap: cap, window: window}
}

// Seen reports whether the same triple was admitted within the window.
func (r *dedupRing) Seen(item domain.Item, now time.Time) bool {
	key := item.DedupKey()
	for _, rec := range r.recs {
		if rec.key == key && now.Sub(rec.at) < r.window {
			return true
		}
	}
	return false
}

// Admit records one applied triple, evicting aged records and the oldest
// record beyond capacity.
func (r *dedupRing) Admit(item domain.Item, now time.Time) {
	kept := r.recs[:0]
	for _, rec := range r.recs {
		if now.Sub(rec.at) < r.window {
			kept = append(kept, rec)
		}
	}
	r.recs = kept
	r.recs = append(r.recs, dedupRecord{key: item.DedupKey(), at: now})
	if len(r.recs) > r.cap {
		r.recs = slices.Delete(r.recs, 0, len(r.recs)-r.cap)
	}
}

// Reset forgets every record. Called on reconnect, when the channel may
// replay state that must be re-admitted.
func (r *dedupRing) Reset() {
	r.recs = nil
}

// keyRing is a FIFO set with a fixed capacity used for exact-key alert
// dedup. The cap trades perfect replay suppression on very long sessions for
// bounded memory, keeping the same eviction policy as the update ring.
type keyRing struct {
	cap   int
	order []string
	seen  map[string]struct{}
}

func newKeyRing(cap int) *keyRing {
	return &keyRing{cap: cap, seen: make(map[string]struct{}, cap)}
}

// Seen reports whether the key is currently recorded.
func (r *keyRing) Seen(key string) bool {
	_, ok := r.seen[key]
	return ok
}

// Admit records the key, evicting the oldest entry beyond capacity.
func (r *keyRing) Admit(key string) {
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	r.order = append(r.order, key)
	if len(r.order) > r.cap {
		oldest := r.order[0]
		r.order = slices.Delete(r.order, 0, 1)
		delete(r.seen, oldest)
	}
}

// Reset forgets every key.
func (r *keyRing) Reset() {
	r.order = nil
	r.seen = make(map[string]struct{}, r.cap)
}
