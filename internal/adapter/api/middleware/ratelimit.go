package middleware

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RateLimit is a middleware factory limiting how often one account may hit
// the wrapped endpoint. Limiters live for the process lifetime; the account
// population is small enough that the map is never pruned.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[uuid.UUID]*rate.Limiter)
	)

	limiterFor := func(accountID uuid.UUID) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[accountID]
		if !ok {
			l = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
			limiters[accountID] = l
		}
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !limiterFor(actor.AccountID).Allow() {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
