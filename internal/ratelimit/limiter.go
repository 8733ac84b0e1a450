// Package ratelimit implements the per-client sliding-window request limiter
// shared by the login, registration, and content-submission flows.
package ratelimit

import (
	"sync"
	"time"
)

const (
	sweepInterval    = 5 * time.Minute
	retentionHorizon = time.Hour
)

// Policy pairs a request budget with the trailing window it applies to.
// Each endpoint purpose layers its own policy on the shared mechanism.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

var (
	// PolicyLogin bounds password login attempts per client identity.
	PolicyLogin = Policy{MaxRequests: 10, Window: 15 * time.Minute}
	// PolicyRegister bounds account registrations per client identity.
	PolicyRegister = Policy{MaxRequests: 5, Window: 15 * time.Minute}
	// PolicySubmitActivity bounds activity submissions per authenticated
	// principal rather than per client address.
	PolicySubmitActivity = Policy{MaxRequests: 3, Window: time.Hour}
)

// EndpointKey builds the bucket key for anonymous flows.
func EndpointKey(clientIdentity, endpoint string) string {
	return clientIdentity + ":" + endpoint
}

// SubmissionKey builds the bucket key for authenticated submission flows.
func SubmissionKey(principalID string) string {
	return "submit_activity_" + principalID
}

// Config carries the limiter dependencies.
type Config struct {
	Store BucketStore
	Clock func() time.Time
}

// Limiter admits or denies requests against per-key sliding windows. All
// methods are safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	store     BucketStore
	clock     func() time.Time
	lastSweep time.Time
}

// New constructs a Limiter, defaulting to an in-memory store and the system
// clock.
func New(cfg Config) *Limiter {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	limiter := &Limiter{
		store: store,
		clock: clock,
	}
	limiter.lastSweep = clock()
	return limiter
}

// Admit evaluates one request against the key's window. It reports whether
// the request is admitted and how much of the budget remains after this
// call. A denied request is final for this call; retry policy belongs to the
// caller.
func (l *Limiter) Admit(key string, maxRequests int, window time.Duration) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	l.sweepIfDue(now)

	windowStart := now.Add(-window)
	stamps := l.store.Get(key)
	recent := make([]time.Time, 0, len(stamps)+1)
	for _, stamp := range stamps {
		if stamp.After(windowStart) {
			recent = append(recent, stamp)
		}
	}

	if len(recent) >= maxRequests {
		l.store.Put(key, recent)
		remaining := maxRequests - len(recent)
		if remaining < 0 {
			remaining = 0
		}
		return false, remaining
	}

	recent = append(recent, now)
	l.store.Put(key, recent)
	return true, maxRequests - len(recent)
}

// AdmitPolicy applies a named policy to the key.
func (l *Limiter) AdmitPolicy(key string, policy Policy) (bool, int) {
	return l.Admit(key, policy.MaxRequests, policy.Window)
}

// sweepIfDue compacts all buckets once the sweep interval has elapsed. The
// retention horizon is global and independent of per-call window sizes, so
// memory stays bounded regardless of how callers size their windows.
func (l *Limiter) sweepIfDue(now time.Time) {
	if now.Sub(l.lastSweep) <= sweepInterval {
		return
	}
	l.store.Sweep(now.Add(-retentionHorizon))
	l.lastSweep = now
}
