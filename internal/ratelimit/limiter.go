// Package ratelimit provides per-client token bucket rate limiting.
// Each client key owns an independent bucket that starts at full
// capacity and refills at capacity tokens per window.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/doanvh/studentsvc/internal/observability"
)

// Default limiter configuration.
const (
	// DefaultCapacity is the default bucket capacity.
	DefaultCapacity = 10

	// DefaultWindow is the default refill window. A bucket refills at
	// capacity tokens per window.
	DefaultWindow = time.Minute

	// MinCleanupInterval is the minimum interval between eviction sweeps.
	MinCleanupInterval = 10 * time.Second

	// MaxCleanupInterval is the maximum interval between eviction sweeps.
	MaxCleanupInterval = time.Minute
)

// entry holds a client bucket and its last access time for TTL-based
// eviction.
type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Service is a per-key token bucket rate limiter. Buckets are created
// lazily on first use of a key and evicted after a period of inactivity
// so the map stays bounded. Safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	buckets  map[string]*entry
	capacity int
	window   time.Duration
	ttl      time.Duration
	logger   observability.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// Option is a functional option for configuring the limiter.
type Option func(*Service)

// WithLogger sets the logger for the limiter.
func WithLogger(logger observability.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTTL sets the inactivity TTL after which a client bucket is
// evicted. Zero disables eviction.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// New creates a limiter with the given capacity and refill window.
// Non-positive values fall back to the defaults.
func New(capacity int, window time.Duration, opts ...Option) *Service {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if window <= 0 {
		window = DefaultWindow
	}

	s := &Service{
		buckets:  make(map[string]*entry),
		capacity: capacity,
		window:   window,
		ttl:      6 * window,
		logger:   observability.NopLogger(),
		stopCh:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// refillRate returns the continuous refill rate in tokens per second.
func (s *Service) refillRate() rate.Limit {
	return rate.Limit(float64(s.capacity) / s.window.Seconds())
}

// bucket returns the bucket for key, creating it at full capacity on
// first use. lastAccess is refreshed inside the same critical section
// so eviction never races with lookup.
func (s *Service) bucket(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	e, ok := s.buckets[key]
	if !ok {
		e = &entry{
			limiter:    rate.NewLimiter(s.refillRate(), s.capacity),
			lastAccess: now,
		}
		s.buckets[key] = e
	} else {
		e.lastAccess = now
	}
	limiter := e.limiter
	s.mu.Unlock()

	return limiter
}

// TryConsume attempts to deduct one token from the bucket for key.
// It returns true and commits the deduction iff a token was available.
// The deduction is atomic: two concurrent callers can never both
// consume the last token.
func (s *Service) TryConsume(key string) bool {
	return s.bucket(key).Allow()
}

// AvailableTokens returns the number of whole tokens currently
// available for key. A key that has never been seen reports full
// capacity.
func (s *Service) AvailableTokens(key string) int {
	s.mu.Lock()
	e, ok := s.buckets[key]
	s.mu.Unlock()

	if !ok {
		return s.capacity
	}

	tokens := int(math.Floor(e.limiter.Tokens()))
	if tokens < 0 {
		return 0
	}
	if tokens > s.capacity {
		return s.capacity
	}
	return tokens
}

// Capacity returns the bucket capacity.
func (s *Service) Capacity() int {
	return s.capacity
}

// Window returns the refill window.
func (s *Service) Window() time.Duration {
	return s.window
}

// BucketInfo returns a human-readable description of the bucket state
// for key, for observability.
func (s *Service) BucketInfo(key string) string {
	s.mu.Lock()
	_, ok := s.buckets[key]
	s.mu.Unlock()

	if !ok {
		return "No requests yet"
	}
	return fmt.Sprintf("Available tokens: %d/%d", s.AvailableTokens(key), s.capacity)
}

// Clear wipes all bucket state. Used by test and reset paths only.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[string]*entry)
}

// cleanup removes buckets not accessed within maxAge.
func (s *Service) cleanup(maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range s.buckets {
		if now.Sub(e.lastAccess) > maxAge {
			delete(s.buckets, key)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("evicted idle rate limit buckets",
			observability.Int("removed", removed),
			observability.Int("remaining", len(s.buckets)),
		)
	}
}

// StartAutoCleanup starts a background goroutine that periodically
// evicts idle buckets. It is a no-op when the TTL is zero. Call Close
// to stop the goroutine.
func (s *Service) StartAutoCleanup() {
	if s.ttl <= 0 {
		return
	}

	go func() {
		interval := s.ttl / 2
		if interval > MaxCleanupInterval {
			interval = MaxCleanupInterval
		}
		if interval < MinCleanupInterval {
			interval = MinCleanupInterval
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.cleanup(s.ttl)
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *Service) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	return nil
}
