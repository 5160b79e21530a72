package handler

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/BuzzLyutic/kanban-board/pkg/respond"
)

// VisitorTTL - через столько простоя бакет клиента удаляется
const VisitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitors struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	byIP      map[string]*visitor
}

func newVisitors(r rate.Limit, b int, ttl time.Duration, now func() time.Time) *visitors {
	return &visitors{
		limit:     r,
		burst:     b,
		ttl:       ttl,
		now:       now,
		lastSweep: now(),
		byIP:      make(map[string]*visitor),
	}
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	// Чистка не чаще раза в ttl, без отдельной горутины
	if now.Sub(v.lastSweep) >= v.ttl {
		for key, vis := range v.byIP {
			if now.Sub(vis.lastSeen) >= v.ttl {
				delete(v.byIP, key)
			}
		}
		v.lastSweep = now
	}

	vis, ok := v.byIP[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.limit, v.burst)}
		v.byIP[ip] = vis
	}
	vis.lastSeen = now
	return vis.limiter
}

func (v *visitors) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.byIP)
}

// RateLimiter - token bucket на каждый IP клиента
func RateLimiter(r rate.Limit, b int) func(http.Handler) http.Handler {
	return rateLimiter(newVisitors(r, b, VisitorTTL, time.Now))
}

func rateLimiter(v *visitors) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ip, _, err := net.SplitHostPort(req.RemoteAddr)
			if err != nil {
				ip = req.RemoteAddr
			}
			if !v.get(ip).Allow() {
				respond.Error(w, req, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
