package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	LoginWindow    = 15 * time.Minute
	APIMaxRequests = 100
	APIWindow      = time.Minute
	MaxLoginBody   = 1 << 20
)

// Counter is a shared fixed-window counter, normally Redis.
type Counter interface {
	Enabled() bool
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	ResetRateLimit(ctx context.Context, key string) error
}

// RateLimiter counts in Redis when available and falls back to
// per-process token buckets otherwise.
type RateLimiter struct {
	counter Counter
	log     zerolog.Logger

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const maxBuckets = 10000

func NewRateLimiter(counter Counter, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{counter: counter, log: log, buckets: make(map[string]*bucket)}
}

// allow reports whether key may proceed, how many requests remain and
// when to retry.
func (r *RateLimiter) allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Duration) {
	if r.counter != nil && r.counter.Enabled() {
		n, ttl, err := r.counter.IncrementRateLimit(ctx, key, window)
		if err == nil {
			remaining := limit - int(n)
			if remaining < 0 {
				remaining = 0
			}
			return n <= int64(limit), remaining, ttl
		}
		r.log.Warn().Err(err).Str("key", key).Msg("rate limit counter unavailable, using local limiter")
	}
	return r.allowLocal(key, limit, window)
}

func (r *RateLimiter) allowLocal(key string, limit int, window time.Duration) (bool, int, time.Duration) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		if len(r.buckets) >= maxBuckets {
			r.sweep(now, window)
		}
		every := window / time.Duration(limit)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), limit)}
		r.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, 0, delay
	}
	return true, int(math.Floor(b.limiter.TokensAt(now))), 0
}

// sweep drops buckets idle for a full window. Caller holds r.mu.
func (r *RateLimiter) sweep(now time.Time, window time.Duration) {
	for k, b := range r.buckets {
		if now.Sub(b.lastSeen) > window {
			delete(r.buckets, k)
		}
	}
}

func (r *RateLimiter) reset(ctx context.Context, key string) {
	if r.counter != nil && r.counter.Enabled() {
		if err := r.counter.ResetRateLimit(ctx, key); err != nil {
			r.log.Debug().Err(err).Str("key", key).Msg("rate limit reset failed")
		}
	}
	r.mu.Lock()
	delete(r.buckets, key)
	r.mu.Unlock()
}

// Login limits attempts per email. A successful login clears the count.
func (r *RateLimiter) Login(limit int) gin.HandlerFunc {
	if limit <= 0 {
		limit = 5
	}
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxLoginBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				abort(c, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			abort(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var input struct {
			Email string `json:"email"`
		}
		if json.Unmarshal(body, &input) != nil || strings.TrimSpace(input.Email) == "" {
			c.Next()
			return
		}

		key := "login_attempts:" + strings.ToLower(strings.TrimSpace(input.Email))
		ok, remaining, retry := r.allow(c.Request.Context(), key, limit, LoginWindow)
		if !ok {
			tooMany(c, retry, fmt.Sprintf("Too many login attempts, try again in %d minutes", minutes(retry)))
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			r.reset(c.Request.Context(), key)
		}
	}
}

// API limits requests per client IP.
func (r *RateLimiter) API(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = APIMaxRequests
	}
	if window <= 0 {
		window = APIWindow
	}
	return func(c *gin.Context) {
		ok, remaining, retry := r.allow(c.Request.Context(), "api_requests:"+c.ClientIP(), limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			tooMany(c, retry, "Too many requests, please slow down")
			return
		}
		c.Next()
	}
}

func tooMany(c *gin.Context, retry time.Duration, message string) {
	c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
	abort(c, http.StatusTooManyRequests, message)
}

func minutes(d time.Duration) int {
	m := int(math.Ceil(d.Minutes()))
	if m < 1 {
		return 1
	}
	return m
}
