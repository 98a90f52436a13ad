package services

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type throttleEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// LoginThrottle is a per-email token bucket guarding password checks. The
// Fiber limiter on /api/auth caps requests per IP; this caps guesses per
// account no matter how many addresses they come from.
type LoginThrottle struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	r       rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

// NewLoginThrottle allows perMinute attempts per email with the given burst.
func NewLoginThrottle(perMinute float64, burst int) *LoginThrottle {
	return &LoginThrottle{
		entries: make(map[string]*throttleEntry),
		r:       rate.Limit(perMinute / 60),
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
	}
}

// Allow consumes one attempt for email.
func (t *LoginThrottle) Allow(email string) bool {
	key := strings.ToLower(strings.TrimSpace(email))
	now := t.now()

	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok {
		e = &throttleEntry{lim: rate.NewLimiter(t.r, t.burst)}
		t.entries[key] = e
	}
	e.seen = now
	t.mu.Unlock()

	return e.lim.AllowN(now, 1)
}

// Sweep drops entries idle for longer than the idle window and returns how
// many were removed.
func (t *LoginThrottle) Sweep() int {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for key, e := range t.entries {
		if now.Sub(e.seen) > t.idle {
			delete(t.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every minute until done is closed.
func (t *LoginThrottle) StartSweeper(done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.Sweep()
			case <-done:
				return
			}
		}
	}()
}
