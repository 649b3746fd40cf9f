package events

import (
	"sync"
	"time"
)

// Deduper suppresses duplicate webhook deliveries within a short window.
// Webhook delivery is at-least-once with no idempotency key, so two
// "outline approved" calls for the same record would otherwise both emit and
// both run the draft stage. Keys are recordId plus event name.
type Deduper struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewDeduper creates a Deduper with the given suppression window. A window
// of zero disables deduplication.
func NewDeduper(window time.Duration) *Deduper {
	return &Deduper{
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// Seen reports whether the key was marked within the window. Seen does not
// record the key: callers mark it only once the delivery actually succeeded,
// so a failed delivery stays retryable.
func (d *Deduper) Seen(key string) bool {
	if d.window <= 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	at, ok := d.seen[key]
	return ok && d.now().Sub(at) < d.window
}

// Mark records the key at the current time.
func (d *Deduper) Mark(key string) {
	if d.window <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.seen[key] = now

	// Opportunistic prune keeps the map bounded without a background ticker.
	if len(d.seen) > 1024 {
		for k, at := range d.seen {
			if now.Sub(at) >= d.window {
				delete(d.seen, k)
			}
		}
	}
}
