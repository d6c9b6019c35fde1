package api

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	// DefaultClientCreations is how many new clients one remote address may
	// start per DefaultClientWindow.
	DefaultClientCreations = 120
	DefaultClientWindow    = time.Minute
)

// clientCreationLimiter caps how many shell instances a single remote
// address can start within a fixed window. Every cookieless request
// allocates a shell, so this bounds the registry growth a single origin
// can cause between idle sweeps.
type clientCreationLimiter struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	requests  map[string]*creationRecord
	lastSweep time.Time
	now       func() time.Time
}

type creationRecord struct {
	count       int
	windowStart time.Time
}

// newClientCreationLimiter returns a limiter allowing limit creations per
// window. limit of 0 disables it.
func newClientCreationLimiter(limit int, window time.Duration) *clientCreationLimiter {
	return &clientCreationLimiter{
		max:      limit,
		window:   window,
		requests: make(map[string]*creationRecord),
		now:      time.Now,
	}
}

// allow records a creation for ip. When the address is over its budget it
// returns false and how long until the window resets.
func (rl *clientCreationLimiter) allow(ip string) (bool, time.Duration) {
	if rl == nil || rl.max <= 0 {
		return true, 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweepLocked(now)
	}
	rec, ok := rl.requests[ip]
	if !ok || now.Sub(rec.windowStart) >= rl.window {
		rec = &creationRecord{windowStart: now}
		rl.requests[ip] = rec
	}
	if rec.count >= rl.max {
		return false, rec.windowStart.Add(rl.window).Sub(now)
	}
	rec.count++
	return true, 0
}

// sweepLocked drops records whose window has passed.
func (rl *clientCreationLimiter) sweepLocked(now time.Time) {
	rl.lastSweep = now
	for ip, rec := range rl.requests {
		if now.Sub(rec.windowStart) >= rl.window {
			delete(rl.requests, ip)
		}
	}
}

// writeRateLimited sends a 429 Too Many Requests response.
func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", retryAfterString(retryAfter))
	writeError(w, http.StatusTooManyRequests, "too many new clients from this address; try again later")
}

func retryAfterString(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// remoteIP is the host part of the connection's remote address. Proxy
// headers are not trusted.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
