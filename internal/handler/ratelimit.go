package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zenstudio/backend/internal/metrics"
)

// RateLimiter throttles public submissions per client address. Each client
// gets a budget of submissions inside a sliding window; the oldest
// submission leaving the window frees one slot.
type RateLimiter struct {
	limit   int
	window  time.Duration
	proxies int
	now     func() time.Time
	metrics *metrics.Metrics

	mu   sync.Mutex
	hits map[string][]time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// LimiterOption configures a RateLimiter.
type LimiterOption func(*RateLimiter)

// WithWindow changes the window length (default one minute).
func WithWindow(d time.Duration) LimiterOption {
	return func(rl *RateLimiter) { rl.window = d }
}

// WithTrustedProxies sets how many reverse proxies append to
// X-Forwarded-For in front of the server. Zero ignores the header.
func WithTrustedProxies(n int) LimiterOption {
	return func(rl *RateLimiter) { rl.proxies = n }
}

// WithLimiterClock replaces time.Now.
func WithLimiterClock(fn func() time.Time) LimiterOption {
	return func(rl *RateLimiter) { rl.now = fn }
}

// WithLimiterMetrics counts rejected submissions in m.
func WithLimiterMetrics(m *metrics.Metrics) LimiterOption {
	return func(rl *RateLimiter) { rl.metrics = m }
}

// NewRateLimiter allows perWindow submissions per client per window and
// starts a sweeper that forgets idle clients. Call Close to stop it.
func NewRateLimiter(perWindow int, opts ...LimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limit:   perWindow,
		window:  time.Minute,
		proxies: 1,
		now:     time.Now,
		hits:    make(map[string][]time.Time),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rl)
	}
	if rl.window <= 0 {
		rl.window = time.Minute
	}
	go rl.sweep(5 * rl.window)
	return rl
}

// Close stops the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

// Middleware rejects over-budget requests with 429 and a Retry-After
// header. A nil RateLimiter lets everything through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := rl.clientAddr(r)
		wait, ok := rl.take(client)
		if !ok {
			rl.metrics.IncrementThrottled()
			slog.Warn("submission throttled", "client", client, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// take records a submission for client if the budget allows it. Otherwise
// it reports how long until the next slot opens.
func (rl *RateLimiter) take(client string) (time.Duration, bool) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := rl.recent(rl.hits[client], now)
	if len(recent) >= rl.limit {
		rl.hits[client] = recent
		return recent[0].Add(rl.window).Sub(now), false
	}
	rl.hits[client] = append(recent, now)
	return 0, true
}

// recent drops the timestamps that fell out of the window ending at now.
// Timestamps are appended in order, so the survivors are a suffix.
func (rl *RateLimiter) recent(ts []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.forgetIdle()
		}
	}
}

func (rl *RateLimiter) forgetIdle() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for client, ts := range rl.hits {
		if len(rl.recent(ts, now)) == 0 {
			delete(rl.hits, client)
		}
	}
}

// clientAddr picks the address the last trusted proxy saw. Entries left of
// it in X-Forwarded-For are client-supplied and ignored.
func (rl *RateLimiter) clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" && rl.proxies > 0 {
		hops := strings.Split(fwd, ",")
		if i := len(hops) - rl.proxies; i >= 0 {
			return strings.TrimSpace(hops[i])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
