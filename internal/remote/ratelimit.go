package remote

import (
	"sync"
	"time"

	"github.com/goliatone/go-notepub/pkg/interfaces"
)

// DefaultWindow is the length of the sliding rate limit window.
const DefaultWindow = time.Minute

// SlidingWindow counts request attempts within the trailing window. It never
// blocks: a full window yields a *RateLimitError with the time until the
// oldest attempt ages out.
type SlidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	stamps []time.Time
}

// NewSlidingWindow creates a limiter allowing limit attempts per window. A
// limit below one is raised to one.
func NewSlidingWindow(limit int, window time.Duration, now func() time.Time) *SlidingWindow {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    now,
	}
}

// Acquire records an attempt or fails when the window is already full.
func (w *SlidingWindow) Acquire() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.prune(now)

	if len(w.stamps) >= w.limit {
		wait := w.stamps[0].Add(w.window).Sub(now)
		return &RateLimitError{Wait: wait, Limit: w.limit}
	}
	w.stamps = append(w.stamps, now)
	return nil
}

// Stats reports usage of the current window.
func (w *SlidingWindow) Stats() interfaces.RequestStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(w.now())
	used := len(w.stamps)
	return interfaces.RequestStats{
		RequestsInLastMinute: used,
		Remaining:            max(0, w.limit-used),
	}
}

// prune drops attempts that are not strictly inside the window.
func (w *SlidingWindow) prune(now time.Time) {
	cutoff := now.Add(-w.window)
	keep := 0
	for keep < len(w.stamps) && !w.stamps[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[keep:]...)
	}
}
