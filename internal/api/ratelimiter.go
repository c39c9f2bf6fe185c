package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// unthrottledPaths are served even when the limiter denies.
var unthrottledPaths = map[string]struct{}{
	"/healthz": {},
}

// rateLimiter decides whether a request may proceed right now.
type rateLimiter interface {
	Allow() bool
}

// tokenBucket is the rate.Limiter backed rateLimiter installed by NewRouter.
type tokenBucket struct {
	limiter *rate.Limiter
}

// newTokenBucketLimiter returns nil when either argument is not positive,
// which rateLimitMiddleware treats as unlimited.
func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 || burst <= 0 {
		return nil
	}
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (b *tokenBucket) Allow() bool {
	return b.limiter.Allow()
}

// retryAfter is the time until the bucket refills by one token.
func (b *tokenBucket) retryAfter() time.Duration {
	return time.Duration(float64(time.Second) / float64(b.limiter.Limit()))
}

// retryAfterSeconds renders the Retry-After header value, never below one second.
func retryAfterSeconds(limiter rateLimiter) string {
	seconds := 1
	if bucket, ok := limiter.(*tokenBucket); ok {
		seconds = max(seconds, int(math.Ceil(bucket.retryAfter().Seconds())))
	}
	return strconv.Itoa(seconds)
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, exempt := unthrottledPaths[r.URL.Path]; exempt || limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", retryAfterSeconds(limiter))
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, please retry shortly")
	})
}
