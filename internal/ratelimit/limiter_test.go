package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_TryConsume(t *testing.T) {
	limiter := New(5, time.Minute)

	key := "192.168.1.1"

	// First 5 requests should be admitted (full bucket)
	for i := 0; i < 5; i++ {
		assert.True(t, limiter.TryConsume(key), "request %d should be admitted", i+1)
	}

	// 6th request should be rejected (bucket exhausted)
	assert.False(t, limiter.TryConsume(key), "6th request should be rejected")
}

func TestService_TryConsume_Refill(t *testing.T) {
	// 100 tokens per second, capacity 1
	limiter := New(1, 10*time.Millisecond)

	key := "client"

	assert.True(t, limiter.TryConsume(key))
	assert.False(t, limiter.TryConsume(key))

	// Wait for refill
	time.Sleep(20 * time.Millisecond)

	assert.True(t, limiter.TryConsume(key))
}

func TestService_TryConsume_IndependentKeys(t *testing.T) {
	limiter := New(2, time.Minute)

	// Exhaust one client
	assert.True(t, limiter.TryConsume("10.0.0.1"))
	assert.True(t, limiter.TryConsume("10.0.0.1"))
	assert.False(t, limiter.TryConsume("10.0.0.1"))

	// Other clients keep their full budget
	assert.True(t, limiter.TryConsume("10.0.0.2"))
	assert.Equal(t, 2, limiter.AvailableTokens("10.0.0.3"))
}

func TestService_TryConsume_Concurrent(t *testing.T) {
	capacity := 10
	limiter := New(capacity, time.Hour)

	key := "contended"
	workers := 100

	var admitted atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if limiter.TryConsume(key) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	// Exactly capacity requests get through, never more. The window
	// is an hour so no token refills during the test.
	assert.Equal(t, int64(capacity), admitted.Load())
}

func TestService_TryConsume_ConcurrentKeys(t *testing.T) {
	limiter := New(3, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("client-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				limiter.TryConsume(key)
			}
		}()
	}
	wg.Wait()

	// Every key ended exhausted independently
	for i := 0; i < 20; i++ {
		assert.Equal(t, 0, limiter.AvailableTokens(fmt.Sprintf("client-%d", i)))
	}
}

func TestService_AvailableTokens(t *testing.T) {
	limiter := New(10, time.Hour)

	// Unseen key reports full capacity
	assert.Equal(t, 10, limiter.AvailableTokens("fresh"))

	limiter.TryConsume("seen")
	limiter.TryConsume("seen")
	limiter.TryConsume("seen")

	assert.Equal(t, 7, limiter.AvailableTokens("seen"))
}

func TestService_BucketInfo(t *testing.T) {
	limiter := New(10, time.Hour)

	assert.Equal(t, "No requests yet", limiter.BucketInfo("fresh"))

	limiter.TryConsume("seen")
	assert.Equal(t, "Available tokens: 9/10", limiter.BucketInfo("seen"))
}

func TestService_Accessors(t *testing.T) {
	limiter := New(25, 30*time.Second)

	assert.Equal(t, 25, limiter.Capacity())
	assert.Equal(t, 30*time.Second, limiter.Window())
}

func TestService_Defaults(t *testing.T) {
	limiter := New(0, 0)

	assert.Equal(t, DefaultCapacity, limiter.Capacity())
	assert.Equal(t, DefaultWindow, limiter.Window())
}

func TestService_Clear(t *testing.T) {
	limiter := New(1, time.Hour)

	require.True(t, limiter.TryConsume("client"))
	require.False(t, limiter.TryConsume("client"))

	limiter.Clear()

	// Bucket state wiped, client starts fresh
	assert.True(t, limiter.TryConsume("client"))
}

func TestService_Cleanup(t *testing.T) {
	limiter := New(5, time.Hour)

	limiter.TryConsume("idle")
	limiter.TryConsume("idle")

	// Evict everything idle for more than zero
	time.Sleep(5 * time.Millisecond)
	limiter.cleanup(time.Millisecond)

	limiter.mu.Lock()
	_, ok := limiter.buckets["idle"]
	limiter.mu.Unlock()
	assert.False(t, ok, "idle bucket should be evicted")

	// Evicted client starts with a full bucket again
	assert.Equal(t, 5, limiter.AvailableTokens("idle"))
}

func TestService_Cleanup_KeepsActive(t *testing.T) {
	limiter := New(5, time.Hour)

	limiter.TryConsume("active")
	limiter.cleanup(time.Minute)

	limiter.mu.Lock()
	_, ok := limiter.buckets["active"]
	limiter.mu.Unlock()
	assert.True(t, ok, "recently used bucket should survive")
}

func TestService_Close(t *testing.T) {
	limiter := New(5, time.Minute)
	limiter.StartAutoCleanup()

	require.NoError(t, limiter.Close())
	// Close is idempotent
	require.NoError(t, limiter.Close())
}
