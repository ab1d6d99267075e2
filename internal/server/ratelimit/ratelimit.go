// Package ratelimit throttles API clients with per-endpoint token buckets.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Rule is the limit applied to requests matching a path prefix and method.
// A Limit of zero or below means the endpoint is unthrottled.
type Rule struct {
	Prefix string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// DefaultRules tiers the screening API: batch submissions are expensive
// (each consumes many AI calls), polling and reads are cheap.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "/api/screen", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Prefix: "/api/apply", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Prefix: "/health", Method: "GET", Limit: 0},
	}
}

// Info reports the limit state returned alongside every decision.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Bucket housekeeping: idle buckets are dropped so the per-client map does
// not grow without bound in a long-running server.
const (
	pruneInterval = 5 * time.Minute
	maxBucketIdle = time.Hour
)

// Limiter tracks one token bucket per (client, endpoint, method). It owns a
// background prune loop; call Stop on shutdown.
type Limiter struct {
	mu            sync.Mutex
	buckets       map[string]*bucket
	rules         []Rule
	defaultLimit  int
	defaultWindow time.Duration
	pruneTicker   *time.Ticker
	pruneStop     chan struct{}
}

// NewLimiter builds a limiter with the given endpoint rules and a fallback
// limit for everything else, and starts its prune loop.
func NewLimiter(rules []Rule, defaultLimit int, defaultWindow time.Duration) *Limiter {
	l := &Limiter{
		buckets:       make(map[string]*bucket),
		rules:         rules,
		defaultLimit:  defaultLimit,
		defaultWindow: defaultWindow,
		pruneTicker:   time.NewTicker(pruneInterval),
		pruneStop:     make(chan struct{}),
	}
	go l.pruneLoop()
	return l
}

func (l *Limiter) pruneLoop() {
	for {
		select {
		case <-l.pruneTicker.C:
			l.Prune(maxBucketIdle)
		case <-l.pruneStop:
			return
		}
	}
}

// Stop ends the prune loop.
func (l *Limiter) Stop() {
	l.pruneTicker.Stop()
	close(l.pruneStop)
}

// Allow decides whether one request from clientID may proceed.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	rule := l.match(path, method)
	if rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	l.mu.Lock()
	key := clientID + ":" + rule.Prefix + ":" + rule.Method
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(rule)
		l.buckets[key] = b
	}
	allowed, remaining, reset := b.take()
	l.mu.Unlock()

	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		if retry := time.Until(reset); retry > 0 {
			info.RetryAfter = retry
		}
	}
	return allowed, info
}

// Prune drops buckets idle longer than maxIdle.
func (l *Limiter) Prune(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

func (l *Limiter) match(path, method string) Rule {
	for _, rule := range l.rules {
		if rule.Method == method && strings.HasPrefix(path, rule.Prefix) {
			return rule
		}
	}
	return Rule{Limit: l.defaultLimit, Window: l.defaultWindow}
}

// bucket refills tokens continuously at limit/window and caps at burst.
type bucket struct {
	capacity   float64
	refillRate float64
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

func newBucket(rule Rule) *bucket {
	capacity := float64(rule.Burst)
	if capacity <= 0 {
		capacity = float64(rule.Limit)
	}
	return &bucket{
		capacity:   capacity,
		refillRate: float64(rule.Limit) / rule.Window.Seconds(),
		tokens:     capacity,
		lastRefill: time.Now(),
	}
}

// take consumes one token if available. Caller holds the limiter lock.
func (b *bucket) take() (allowed bool, remaining int, reset time.Time) {
	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
	b.lastSeen = now

	if b.tokens >= 1.0 {
		b.tokens--
		allowed = true
	}

	reset = now
	if b.tokens < b.capacity {
		secondsUntilFull := (b.capacity - b.tokens) / b.refillRate
		reset = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	}
	return allowed, int(b.tokens), reset
}
