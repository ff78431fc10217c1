package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketAllow(t *testing.T) {
	bucket := NewTokenBucket(5, 1)

	for i := 0; i < 5; i++ {
		assert.True(t, bucket.Allow(), "request %d within capacity", i+1)
	}
	assert.False(t, bucket.Allow(), "bucket is drained")

	time.Sleep(1100 * time.Millisecond)
	assert.True(t, bucket.Allow(), "one token refilled after a second")
}

func TestTokenBucketAllowN(t *testing.T) {
	bucket := NewTokenBucket(10, 2)

	assert.True(t, bucket.AllowN(10))
	assert.False(t, bucket.AllowN(1))

	time.Sleep(1100 * time.Millisecond)
	assert.True(t, bucket.AllowN(2), "two tokens refilled after a second")
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(3, 1)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("alice"))
	}
	assert.False(t, limiter.Allow("alice"))
	assert.True(t, limiter.Allow("bob"), "other keys keep their own bucket")
}

func TestRateLimiterRefill(t *testing.T) {
	limiter := NewRateLimiter(5, 2)

	for i := 0; i < 5; i++ {
		limiter.Allow("alice")
	}
	assert.False(t, limiter.Allow("alice"))

	time.Sleep(1100 * time.Millisecond)
	assert.True(t, limiter.Allow("alice"))
	assert.True(t, limiter.Allow("alice"))
	assert.False(t, limiter.Allow("alice"), "only two tokens refilled")
}

func TestRateLimiterReset(t *testing.T) {
	limiter := NewRateLimiter(2, 1)

	limiter.Allow("alice")
	limiter.Allow("alice")
	assert.False(t, limiter.Allow("alice"))

	limiter.Reset("alice")
	assert.True(t, limiter.Allow("alice"))
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(100, 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if limiter.Allow("shared") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed, "concurrent callers never exceed capacity")
}

func BenchmarkTokenBucketAllow(b *testing.B) {
	bucket := NewTokenBucket(1000000, 100000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bucket.Allow()
	}
}

func BenchmarkRateLimiterAllow(b *testing.B) {
	limiter := NewRateLimiter(1000000, 100000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow("alice")
	}
}
