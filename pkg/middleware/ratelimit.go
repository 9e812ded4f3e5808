package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TokenBucketLimiter implements token bucket rate limiting per client key
type TokenBucketLimiter struct {
	mu              sync.RWMutex
	buckets         map[string]*tokenBucket
	rate            int // tokens per second
	capacity        int // bucket capacity
	cleanupInterval time.Duration
	lastCleanup     time.Time
	logger          *zap.Logger
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     int
	capacity   int
	rate       int
	lastRefill time.Time
}

// NewTokenBucketLimiter creates a new token bucket rate limiter. Stale
// buckets are swept lazily during Allow, so a limiter holds no goroutine
// and needs no teardown.
func NewTokenBucketLimiter(rate, capacity int, logger *zap.Logger) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		buckets:         make(map[string]*tokenBucket),
		rate:            rate,
		capacity:        capacity,
		cleanupInterval: 5 * time.Minute,
		lastCleanup:     time.Now(),
		logger:          logger,
	}
}

// Allow checks if a request is allowed for the given key
func (tbl *TokenBucketLimiter) Allow(key string) bool {
	tbl.mu.RLock()
	bucket, exists := tbl.buckets[key]
	tbl.mu.RUnlock()

	if !exists {
		tbl.mu.Lock()
		// Double-check after acquiring write lock
		if bucket, exists = tbl.buckets[key]; !exists {
			bucket = &tokenBucket{
				tokens:     tbl.capacity,
				capacity:   tbl.capacity,
				rate:       tbl.rate,
				lastRefill: time.Now(),
			}
			tbl.buckets[key] = bucket
		}
		if now := time.Now(); now.Sub(tbl.lastCleanup) > tbl.cleanupInterval {
			tbl.removeStale(now)
		}
		tbl.mu.Unlock()
	}

	return bucket.consume()
}

func (tb *tokenBucket) consume() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds()) * tb.rate
	if tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// removeStale drops buckets idle longer than the cleanup interval.
// The caller must hold the write lock.
func (tbl *TokenBucketLimiter) removeStale(now time.Time) {
	for key, bucket := range tbl.buckets {
		bucket.mu.Lock()
		if now.Sub(bucket.lastRefill) > tbl.cleanupInterval {
			delete(tbl.buckets, key)
		}
		bucket.mu.Unlock()
	}
	tbl.lastCleanup = now
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int
	BurstSize         int
	Logger            *zap.Logger
}

// RateLimit middleware implements per-client-IP rate limiting
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	limiter := NewTokenBucketLimiter(config.RequestsPerSecond, config.BurstSize, config.Logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			if !limiter.Allow(clientIP) {
				config.Logger.Warn("Rate limit exceeded",
					zap.String("client_ip", clientIP),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method))

				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
