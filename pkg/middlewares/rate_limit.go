package middlewares

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultRateLimitWindow sliding window duration
	DefaultRateLimitWindow = 15 * time.Minute
	// DefaultRateLimitMax admissions per window per key
	DefaultRateLimitMax = 1000
)

// RateLimiter per-key sliding window admission control. Buckets live in
// process memory only; counts are approximate and reset on restart.
type RateLimiter struct {
	window time.Duration
	max    int

	mu      sync.Mutex
	buckets map[string][]time.Time
}

// NewRateLimiter create RateLimiter, zero values fall back to defaults
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	if max <= 0 {
		max = DefaultRateLimitMax
	}
	return &RateLimiter{
		window:  window,
		max:     max,
		buckets: make(map[string][]time.Time),
	}
}

// Allow admit one event for key. Entries at or before the window start are
// discarded first; on rejection retryAfter reports the window duration.
func (r *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()
	windowStart := now.Add(-r.window)

	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[key]
	valid := bucket[:0]
	for _, t := range bucket {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= r.max {
		r.buckets[key] = valid
		return false, r.window
	}

	r.buckets[key] = append(valid, now)
	return true, 0
}

// Middleware fiber middleware keyed by client IP, 429 on rejection
func (r *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, retryAfter := r.Allow(c.IP())
		if !ok {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests",
				"retry_after": int(retryAfter.Seconds()),
			})
		}
		return c.Next()
	}
}
