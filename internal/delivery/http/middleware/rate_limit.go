package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"evalue-storefront/pkg/utils"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP. Idle clients are swept by a
// background loop that stops on Shutdown.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit     rate.Limit
	burst     int
	sweep     time.Duration
	clientTTL time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRateLimiter(ctx context.Context, rps float64, burst int, sweep, clientTTL time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(rps),
		burst:     burst,
		sweep:     sweep,
		clientTTL: clientTTL,
	}
	rl.ctx, rl.cancel = context.WithCancel(ctx)
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := rl.limiter(getClientIP(r))
			if !limiter.Allow() {
				res := limiter.Reserve()
				wait := res.Delay()
				res.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
				utils.WriteError(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now())
		case <-rl.ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.clientTTL {
			delete(rl.visitors, ip)
		}
	}
}

// Clients reports how many IPs are currently tracked.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (rl *RateLimiter) Shutdown() {
	rl.cancel()
}
