// Package ratelimit implements a per-key sliding-window rate limiter.
//
// State lives in process memory and resets on restart. That is acceptable
// here: the limiter protects upstream provider quotas, it is not an
// accounting system.
package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultLimit is the per-key admission budget per window.
	DefaultLimit = 30
	// DefaultMaxKeys bounds how many distinct keys are tracked before the
	// least recently used one is evicted.
	DefaultMaxKeys = 10000

	window = time.Minute
)

type bucket struct {
	key    string
	stamps []time.Time
	elem   *list.Element
}

// Limiter admits at most limit events per key per sliding one-minute
// window. All methods are safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	maxKeys int
	buckets map[string]*bucket
	lru     *list.List
	now     func() time.Time
}

// New creates a limiter. Non-positive arguments fall back to the defaults.
func New(limit, maxKeys int) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	return &Limiter{
		limit:   limit,
		maxKeys: maxKeys,
		buckets: make(map[string]*bucket),
		lru:     list.New(),
		now:     time.Now,
	}
}

// Allow reports whether one more event is admitted for key right now, and
// the number of events counted in the current window including this one
// when admitted. A rejected event is not recorded, so rejections never
// extend the caller's wait.
func (l *Limiter) Allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b := l.touch(key)

	cutoff := now.Add(-window)
	i := 0
	for i < len(b.stamps) && b.stamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.stamps = append(b.stamps[:0], b.stamps[i:]...)
	}

	if len(b.stamps) >= l.limit {
		return false, len(b.stamps)
	}
	b.stamps = append(b.stamps, now)
	return true, len(b.stamps)
}

// touch returns the bucket for key, creating it if needed, and marks it
// most recently used. Creation may evict the least recently used key.
func (l *Limiter) touch(key string) *bucket {
	if b, ok := l.buckets[key]; ok {
		l.lru.MoveToBack(b.elem)
		return b
	}

	if len(l.buckets) >= l.maxKeys {
		if front := l.lru.Front(); front != nil {
			evicted := front.Value.(*bucket)
			l.lru.Remove(front)
			delete(l.buckets, evicted.key)
		}
	}

	b := &bucket{key: key}
	b.elem = l.lru.PushBack(b)
	l.buckets[key] = b
	return b
}

// Keys returns the number of keys currently tracked.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
