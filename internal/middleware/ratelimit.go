package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SampleRateLimit enforces the minimum sample interval per device. A device
// posting faster than the configured interval gets 429 with Retry-After; a
// small burst is allowed so a reconnecting device can flush a short backlog.
func SampleRateLimit(minInterval time.Duration, burst int) func(http.Handler) http.Handler {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Every(minInterval), burst)
			limiters[key] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			employeeID, ok := GetDeviceEmployeeID(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !limiterFor(employeeID.String()).Allow() {
				w.Header().Set("Retry-After", minInterval.String())
				http.Error(w, "Sample rate too high", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
