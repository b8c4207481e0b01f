package httpapi

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// rateLimiter tracks one token bucket per client host. Buckets are created
// lazily and live for the process lifetime; the expected client population is
// small (office deployments), so no eviction.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newRateLimiter(rps float64) *rateLimiter {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		visitors: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *rateLimiter) allow(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	rl.mu.Lock()
	lim, ok := rl.visitors[host]
	if !ok {
		lim = rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[host] = lim
	}
	rl.mu.Unlock()

	return lim.Allow()
}

func (rl *rateLimiter) middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			writeJSONError(w, http.StatusTooManyRequests, "Demasiadas solicitudes, intenta de nuevo en unos segundos.")
			return
		}
		next(w, r)
	}
}
