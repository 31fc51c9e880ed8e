package auth

import (
	"sync"
	"time"
)

const (
	// ThrottleWindow is how long login attempts accumulate before the
	// counter resets.
	ThrottleWindow = 15 * time.Minute
	// ThrottleMaxAttempts is the number of attempts allowed per window.
	// The attempt after it is rejected before credentials are checked.
	ThrottleMaxAttempts = 5

	throttleSweepInterval = 5 * time.Minute
)

type attemptWindow struct {
	count       int
	lastAttempt time.Time
}

// LoginThrottle tracks login attempts per client identity inside a sliding
// window. Counters are shared across concurrent requests from the same
// identity, so increment-and-check happens under one lock.
type LoginThrottle struct {
	mu      sync.Mutex
	windows map[string]*attemptWindow
	now     func() time.Time

	sweepOnce sync.Once
}

// NewLoginThrottle returns an empty throttle.
func NewLoginThrottle() *LoginThrottle {
	return &LoginThrottle{
		windows: make(map[string]*attemptWindow),
		now:     time.Now,
	}
}

// Attempt records one login attempt for key and reports whether the attempt
// must be rejected. Every call counts, successful or not; once the count
// passes ThrottleMaxAttempts the identity stays blocked until the window
// lapses with no further attempts.
func (t *LoginThrottle) Attempt(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepOnce.Do(t.startSweep)

	now := t.now()
	w, ok := t.windows[key]
	if !ok || now.Sub(w.lastAttempt) >= ThrottleWindow {
		w = &attemptWindow{}
		t.windows[key] = w
	}
	w.count++
	w.lastAttempt = now
	return w.count > ThrottleMaxAttempts
}

// Reset clears the window for key. Administrative operation, used by test
// harnesses between scenarios.
func (t *LoginThrottle) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.windows, key)
}

func (t *LoginThrottle) startSweep() {
	go func() {
		ticker := time.NewTicker(throttleSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			t.mu.Lock()
			now := t.now()
			for key, w := range t.windows {
				if now.Sub(w.lastAttempt) >= ThrottleWindow {
					delete(t.windows, key)
				}
			}
			t.mu.Unlock()
		}
	}()
}
