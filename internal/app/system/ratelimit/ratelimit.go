// Package ratelimit throttles requests per client IP.
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/hopenest/internal/app/system/metrics"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"golang.org/x/time/rate"
)

// Message is the 429 response message.
const Message = "Too many requests, please try again later."

// Limiter allows Burst requests per key that refill evenly over Window.
// It is safe for concurrent use.
type Limiter struct {
	name   string
	burst  int
	window time.Duration
	every  rate.Limit
	idle   time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type entry struct {
	lim  *rate.Limiter
	seen time.Time
}

// New creates a limiter named name (used as a metrics label) and starts its
// idle-key sweeper. Call Close to stop the sweeper.
func New(name string, burst int, window time.Duration) *Limiter {
	l := &Limiter{
		name:    name,
		burst:   burst,
		window:  window,
		every:   rate.Every(window / time.Duration(burst)),
		idle:    window,
		entries: make(map[string]*entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweepLoop(window)
	return l
}

// Auth, General and Upload are the limits applied by the router.
func Auth() *Limiter    { return New("auth", 10, 15*time.Minute) }
func General() *Limiter { return New("general", 100, 15*time.Minute) }
func Upload() *Limiter  { return New("upload", 20, time.Hour) }

// Reserve takes a token for key. It reports whether the request may proceed
// and, if not, how long until a token is available.
func (l *Limiter) Reserve(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(l.every, l.burst)}
		l.entries[key] = e
	}
	e.seen = now
	l.mu.Unlock()

	if e.lim.AllowN(now, 1) {
		return true, 0
	}
	r := e.lim.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// Allow is Reserve without the wait.
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.Reserve(key)
	return ok
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Middleware rejects over-limit clients with 429 and a Retry-After header.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := l.Reserve(ClientIP(r))
		if !ok {
			metrics.RecordRateLimited(l.name)
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			respond.Error(w, http.StatusTooManyRequests, respond.CodeRateLimited, Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Close stops the sweeper.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep drops keys idle for a full window; a fresh limiter for them would
// start with a full bucket anyway.
func (l *Limiter) sweep() {
	cutoff := l.now().Add(-l.idle)
	l.mu.Lock()
	for k, e := range l.entries {
		if e.seen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
	l.mu.Unlock()
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}
