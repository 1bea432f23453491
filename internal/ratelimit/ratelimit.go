// Package ratelimit provides a token-bucket rate limiter middleware
// keyed by remote address, using golang.org/x/time/rate.
package ratelimit

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Middleware returns HTTP middleware that rejects requests with 429
// once a remote address exceeds the shared rate.Limit/burst template.
// Each distinct remote address gets its own bucket cloned from
// template's limit and burst.
func Middleware(template *rate.Limiter) func(http.Handler) http.Handler {
	limit := template.Limit()
	burst := template.Burst()

	var mu sync.Mutex
	buckets := make(map[string]*rate.Limiter)

	bucketFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		l, ok := buckets[key]
		if !ok {
			l = rate.NewLimiter(limit, burst)
			buckets[key] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !bucketFor(key).Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
