package auth

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client key (usually the IP).
// Idle limiters expire so the set stays bounded.
type LoginLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// NewLoginLimiter allows perMinute attempts per key with a small burst.
// A non-positive perMinute disables throttling.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	if perMinute <= 0 {
		return &LoginLimiter{}
	}
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}
	return &LoginLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](4096, nil, 15*time.Minute),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

// Allow reports whether another attempt from key may proceed.
func (l *LoginLimiter) Allow(key string) bool {
	if l == nil || l.limiters == nil {
		return true
	}
	limiter, ok := l.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters.Add(key, limiter)
	}
	return limiter.Allow()
}
