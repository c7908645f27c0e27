package tmdb

import (
	"sync"
	"time"
)

// rateLimiter is a sliding window limiter. TMDB allows around 40
// requests per 10 seconds per IP; staying just under keeps bulk
// refreshes from tripping 429s.
type rateLimiter struct {
	mu          sync.Mutex
	requests    []time.Time
	maxRequests int
	window      time.Duration
}

func newRateLimiter(maxRequests int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make([]time.Time, 0, maxRequests),
	}
}

// wait blocks until a request fits inside the window.
func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.evict(now)

	if len(r.requests) < r.maxRequests {
		r.requests = append(r.requests, now)
		return
	}

	// Sleep until the oldest request leaves the window, with a small
	// buffer so it has actually expired when we wake.
	waitTime := r.window - now.Sub(r.requests[0]) + 10*time.Millisecond

	r.mu.Unlock()
	time.Sleep(waitTime)
	r.mu.Lock()

	now = time.Now()
	r.evict(now)
	r.requests = append(r.requests, now)
}

// evict drops requests older than the window. Callers hold r.mu.
func (r *rateLimiter) evict(now time.Time) {
	cutoff := now.Add(-r.window)
	valid := make([]time.Time, 0, r.maxRequests)
	for _, req := range r.requests {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}
	r.requests = valid
}
