package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/wallet-analytics/internal/errors"
	"golang.org/x/time/rate"
)

// ClientIDHeader identifies a caller for throttling; the remote IP is used without it
const ClientIDHeader = "X-Client-ID"

const (
	defaultMaxClients = 10000
	defaultIdleTTL    = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages per-client token buckets. Buckets idle for longer than
// idleTTL are dropped once the table reaches maxClients.
type RateLimiter struct {
	limiters map[string]*clientLimiter
	mu       sync.Mutex

	limit      rate.Limit
	burstSize  int
	maxClients int
	idleTTL    time.Duration
	now        func() time.Time
}

// NewRateLimiter creates a new rate limiter allowing rps requests per second per client
func NewRateLimiter(rps, burst int) *RateLimiter {
	if burst <= 0 {
		burst = rps
	}
	return &RateLimiter{
		limiters:   make(map[string]*clientLimiter),
		limit:      rate.Limit(rps),
		burstSize:  burst,
		maxClients: defaultMaxClients,
		idleTTL:    defaultIdleTTL,
		now:        time.Now,
	}
}

// getLimiter returns the limiter for a client, creating it on first use
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if c, exists := rl.limiters[key]; exists {
		c.lastSeen = now
		return c.limiter
	}

	if len(rl.limiters) >= rl.maxClients {
		rl.evict(now)
	}

	c := &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burstSize), lastSeen: now}
	rl.limiters[key] = c
	return c.limiter
}

// evict drops idle buckets, then the least recently seen one if the table is
// still full. Callers hold rl.mu.
func (rl *RateLimiter) evict(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for key, c := range rl.limiters {
		if now.Sub(c.lastSeen) >= rl.idleTTL {
			delete(rl.limiters, key)
			continue
		}
		if oldestKey == "" || c.lastSeen.Before(oldest) {
			oldestKey, oldest = key, c.lastSeen
		}
	}
	if len(rl.limiters) >= rl.maxClients && oldestKey != "" {
		delete(rl.limiters, oldestKey)
	}
}

func clientKey(r *http.Request) string {
	if id := r.Header.Get(ClientIDHeader); id != "" {
		return id
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimitMiddleware creates a middleware that enforces rate limiting
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := rl.getLimiter(clientKey(r))

			if !limiter.Allow() {
				respondServiceError(w, r, apperrors.NewRateLimitError(float64(limiter.Limit())))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
