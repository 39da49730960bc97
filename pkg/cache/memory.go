package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/kalma/core"
)

// Ensure MemoryLedger implements EventLedger
var _ core.EventLedger = (*MemoryLedger)(nil)

type Config struct {
	TTL     time.Duration
	MaxSize int
}

// Stats are simple counters for ledger behavior.
type Stats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Marks     int64         `json:"marks"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// MemoryLedger is a process-local webhook event ledger.
//
// Only suitable for a single instance; use the redis ledger when scaled out.
type MemoryLedger struct {
	events  map[string]time.Time // key: event id, value: marked at
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	// counters
	hits      int64
	misses    int64
	marks     int64
	evictions int64
}

// NewMemoryLedger creates a ledger. Zero values default to a 72h TTL
// (longer than the provider's retry window) and 10k entries.
func NewMemoryLedger(c Config) *MemoryLedger {
	if c.TTL == 0 {
		c.TTL = 72 * time.Hour
	}
	if c.MaxSize == 0 {
		c.MaxSize = 10_000
	}

	return &MemoryLedger{
		events:  make(map[string]time.Time),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

func (l *MemoryLedger) Seen(_ context.Context, eventID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	markedAt, exists := l.events[eventID]
	if !exists {
		atomic.AddInt64(&l.misses, 1)
		return false, nil
	}

	if l.now().Sub(markedAt) > l.ttl {
		// expired
		delete(l.events, eventID)
		atomic.AddInt64(&l.misses, 1)
		return false, nil
	}

	atomic.AddInt64(&l.hits, 1)
	return true, nil
}

func (l *MemoryLedger) Mark(_ context.Context, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.events[eventID]; !exists && len(l.events) >= l.maxSize {
		l.evictOldest()
	}

	l.events[eventID] = l.now()
	atomic.AddInt64(&l.marks, 1)
	return nil
}

// evictOldest must be called with mu held
func (l *MemoryLedger) evictOldest() {
	var oldestID string
	var oldestAt time.Time
	for id, at := range l.events {
		if oldestID == "" || at.Before(oldestAt) {
			oldestID, oldestAt = id, at
		}
	}
	if oldestID != "" {
		delete(l.events, oldestID)
		atomic.AddInt64(&l.evictions, 1)
	}
}

func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

func (l *MemoryLedger) Stats() Stats {
	return Stats{
		Hits:      atomic.LoadInt64(&l.hits),
		Misses:    atomic.LoadInt64(&l.misses),
		Marks:     atomic.LoadInt64(&l.marks),
		Evictions: atomic.LoadInt64(&l.evictions),
		Size:      l.Len(),
		TTL:       l.ttl,
	}
}
