// Package ratelimit throttles outbound polling traffic per homeserver, so
// a large tracked-user population on one homeserver cannot hammer it every
// tick. Same token-bucket shape as an inbound per-IP limiter, pointed the
// other way: callers Wait() for a slot instead of being rejected for
// lacking one.
package ratelimit

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle hands out per-homeserver rate limiters, lazily created on first
// use and swept on a TTL so homeservers that stop being polled don't leak
// limiters forever.
type Throttle struct {
	mu          sync.Mutex
	entries     map[string]*entry
	lastCleanup time.Time

	rps   rate.Limit
	burst int
	ttl   time.Duration
}

// NewFromEnv builds a Throttle using HOMESERVER_RATE_LIMIT_RPS /
// HOMESERVER_RATE_LIMIT_BURST / HOMESERVER_RATE_LIMIT_TTL_MIN, falling back
// to conservative defaults.
func NewFromEnv() *Throttle {
	rps := 5.0
	if v := strings.TrimSpace(os.Getenv("HOMESERVER_RATE_LIMIT_RPS")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			rps = n
		}
	}
	burst := 10
	if v := strings.TrimSpace(os.Getenv("HOMESERVER_RATE_LIMIT_BURST")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			burst = n
		}
	}
	ttl := 15 * time.Minute
	if v := strings.TrimSpace(os.Getenv("HOMESERVER_RATE_LIMIT_TTL_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Minute
		}
	}
	return New(rate.Limit(rps), burst, ttl)
}

// New builds a Throttle with explicit settings.
func New(rps rate.Limit, burst int, ttl time.Duration) *Throttle {
	return &Throttle{entries: make(map[string]*entry), rps: rps, burst: burst, ttl: ttl}
}

// Wait blocks until homeserverHost has an available slot, or ctx is done.
// A non-positive rps disables throttling entirely.
func (t *Throttle) Wait(ctx context.Context, homeserverHost string) error {
	if t.rps <= 0 {
		return nil
	}
	return t.limiterFor(homeserverHost).Wait(ctx)
}

func (t *Throttle) limiterFor(homeserverHost string) *rate.Limiter {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.lastCleanup.IsZero() || now.Sub(t.lastCleanup) > time.Minute {
		for k, v := range t.entries {
			if now.Sub(v.lastSeen) > t.ttl {
				delete(t.entries, k)
			}
		}
		t.lastCleanup = now
	}

	ent := t.entries[homeserverHost]
	if ent == nil {
		ent = &entry{limiter: rate.NewLimiter(t.rps, t.burst), lastSeen: now}
		t.entries[homeserverHost] = ent
	} else {
		ent.lastSeen = now
	}
	return ent.limiter
}
