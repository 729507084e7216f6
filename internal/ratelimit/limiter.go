package ratelimit

import (
	"sync"
	"time"
)

type Category string

const (
	CategoryLogin      Category = "login"
	CategoryAPIGeneral Category = "api_general"
	CategoryPublicForm Category = "public_form"
)

type Limit struct {
	MaxRequests int
	Window      time.Duration
}

func DefaultLimits() map[Category]Limit {
	return map[Category]Limit{
		CategoryLogin:      {MaxRequests: 5, Window: time.Minute},
		CategoryAPIGeneral: {MaxRequests: 100, Window: time.Minute},
		CategoryPublicForm: {MaxRequests: 10, Window: time.Minute},
	}
}

const (
	MaxFailedLogins   = 5
	FailedLoginWindow = 15 * time.Minute
	LockoutDuration   = 5 * time.Minute

	failedLoginPrefix = "failed_login:"
)

type observation struct {
	at    time.Time
	count int
}

// Limiter bounds request rates per (category, client) key with sliding
// windows and escalates repeated failed logins to a temporary IP block.
// State is in-process only; a restart resets it, which is the accepted
// tradeoff for single-instance deployments. Multi-instance would need a
// shared store.
type Limiter struct {
	mu       sync.Mutex
	limits   map[Category]Limit
	requests map[string][]observation
	blocked  map[string]time.Time
	now      func() time.Time
}

func New() *Limiter {
	return NewWithLimits(DefaultLimits())
}

func NewWithLimits(limits map[Category]Limit) *Limiter {
	return &Limiter{
		limits:   limits,
		requests: make(map[string][]observation),
		blocked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

func (l *Limiter) LimitFor(cat Category) Limit {
	if lim, ok := l.limits[cat]; ok {
		return lim
	}
	return l.limits[CategoryAPIGeneral]
}

// Check prunes observations outside the trailing window, then admits and
// records the request unless the window is already full. On rejection the
// returned retry-after equals the window length. Sliding, not fixed-bucket:
// no trailing window-length slice ever admits more than MaxRequests.
func (l *Limiter) Check(clientKey string, cat Category) (bool, time.Duration) {
	lim := l.LimitFor(cat)
	key := string(cat) + ":" + clientKey

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	total := l.pruneAndCount(key, now.Add(-lim.Window))
	if total >= lim.MaxRequests {
		return false, lim.Window
	}

	l.requests[key] = append(l.requests[key], observation{at: now, count: 1})
	return true, 0
}

// Remaining reports how many requests the key has left in the current window
// without recording one.
func (l *Limiter) Remaining(clientKey string, cat Category) int {
	lim := l.LimitFor(cat)
	key := string(cat) + ":" + clientKey

	l.mu.Lock()
	defer l.mu.Unlock()

	total := l.pruneAndCount(key, l.now().Add(-lim.Window))
	if total >= lim.MaxRequests {
		return 0
	}
	return lim.MaxRequests - total
}

func (l *Limiter) IsBlocked(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.blocked[ip]
	if !ok {
		return false
	}
	if l.now().Before(until) {
		return true
	}
	delete(l.blocked, ip)
	return false
}

func (l *Limiter) Block(ip string, duration time.Duration) {
	if duration <= 0 {
		duration = LockoutDuration
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blocked[ip] = l.now().Add(duration)
}

// BlockedFor returns how long ip stays blocked, zero when it is not.
func (l *Limiter) BlockedFor(ip string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	until, ok := l.blocked[ip]
	if !ok {
		return 0
	}
	if d := until.Sub(l.now()); d > 0 {
		return d
	}
	delete(l.blocked, ip)
	return 0
}

// RecordFailedLogin notes one failed attempt for ip and reports whether the
// count within the trailing 15-minute window has reached the lockout
// threshold. The caller decides whether to Block.
func (l *Limiter) RecordFailedLogin(ip string) bool {
	key := failedLoginPrefix + ip

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneAndCount(key, now.Add(-FailedLoginWindow))
	l.requests[key] = append(l.requests[key], observation{at: now, count: 1})

	total := 0
	for _, o := range l.requests[key] {
		total += o.count
	}
	return total >= MaxFailedLogins
}

// ClearFailedLogins drops the failed-login record outright so a successful
// login is never penalized by a stale near-threshold count.
func (l *Limiter) ClearFailedLogins(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.requests, failedLoginPrefix+ip)
}

// pruneAndCount drops observations at or before cutoff and returns the sum of
// the remaining counts. Caller must hold l.mu.
func (l *Limiter) pruneAndCount(key string, cutoff time.Time) int {
	obs := l.requests[key]
	kept := obs[:0]
	total := 0
	for _, o := range obs {
		if o.at.After(cutoff) {
			kept = append(kept, o)
			total += o.count
		}
	}
	if len(kept) == 0 {
		delete(l.requests, key)
	} else {
		l.requests[key] = kept
	}
	return total
}
