package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	ierr "github.com/mmynk/billdesk/internal/errors"
)

// RateLimiter keeps one token bucket per client address and procedure.
// Idle buckets expire.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *cache.Cache
}

// NewRateLimiter allows perMinute requests per client per procedure, with
// bursts of up to burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		buckets: cache.New(10*time.Minute, 20*time.Minute),
	}
}

// Allow reports whether key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	if v, ok := l.buckets.Get(key); ok {
		limiter := v.(*rate.Limiter)
		l.buckets.SetDefault(key, limiter)
		return limiter.Allow()
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	// A concurrent first request may have added one; use whichever won.
	if err := l.buckets.Add(key, limiter, cache.DefaultExpiration); err != nil {
		if v, ok := l.buckets.Get(key); ok {
			limiter = v.(*rate.Limiter)
		}
	}
	return limiter.Allow()
}

// Interceptor limits the named procedures; all others pass through.
func (l *RateLimiter) Interceptor(procedures ...string) connect.UnaryInterceptorFunc {
	limited := make(map[string]bool, len(procedures))
	for _, p := range procedures {
		limited[p] = true
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			if !limited[procedure] {
				return next(ctx, req)
			}
			key := ClientAddr(req.Header(), req.Peer().Addr) + "|" + procedure
			if !l.Allow(key) {
				return nil, ierr.ToConnect(ierr.NewErrorf("rate limit exceeded for %s", procedure).
					WithHint("Too many attempts, please wait a minute").
					Mark(ierr.ErrRateLimited))
			}
			return next(ctx, req)
		}
	}
}

// ClientAddr returns the first X-Forwarded-For hop, or the host part of
// remoteAddr.
func ClientAddr(h http.Header, remoteAddr string) string {
	if fwd := h.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
