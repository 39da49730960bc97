package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestLedger(ttl time.Duration, maxSize int) (*MemoryLedger, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	ledger := NewMemoryLedger(Config{TTL: ttl, MaxSize: maxSize})
	ledger.now = clock.Now
	return ledger, clock
}

func TestMemoryLedgerMarkThenSeenShouldReportSeen(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(time.Hour, 10)

	if err := ledger.Mark(ctx, "evt_1"); err != nil {
		t.Fatalf("Mark failed: %v", err)
	}

	seen, err := ledger.Seen(ctx, "evt_1")
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if !seen {
		t.Error("Expected evt_1 to be seen after Mark")
	}
}

func TestMemoryLedgerUnknownEventShouldNotBeSeen(t *testing.T) {
	ledger, _ := newTestLedger(time.Hour, 10)

	seen, err := ledger.Seen(context.Background(), "evt_unknown")
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Error("Unknown event should not be seen")
	}
	if ledger.Stats().Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", ledger.Stats().Misses)
	}
}

func TestMemoryLedgerExpiryShouldForgetEventsAfterTTL(t *testing.T) {
	ctx := context.Background()
	ledger, clock := newTestLedger(time.Hour, 10)

	ledger.Mark(ctx, "evt_1")
	clock.now = clock.now.Add(2 * time.Hour)

	seen, _ := ledger.Seen(ctx, "evt_1")
	if seen {
		t.Error("Event should be forgotten after TTL")
	}
	if ledger.Len() != 0 {
		t.Errorf("Ledger should be empty after expired entry removed, got size %d", ledger.Len())
	}
}

func TestMemoryLedgerMaxSizeShouldEvictOldest(t *testing.T) {
	ctx := context.Background()
	ledger, clock := newTestLedger(time.Hour, 2)

	ledger.Mark(ctx, "evt_1")
	clock.now = clock.now.Add(time.Second)
	ledger.Mark(ctx, "evt_2")
	clock.now = clock.now.Add(time.Second)
	ledger.Mark(ctx, "evt_3")

	if ledger.Len() != 2 {
		t.Fatalf("Expected size 2 after eviction, got %d", ledger.Len())
	}
	if seen, _ := ledger.Seen(ctx, "evt_1"); seen {
		t.Error("Oldest event should have been evicted")
	}
	if seen, _ := ledger.Seen(ctx, "evt_3"); !seen {
		t.Error("Newest event should be kept")
	}
	if ledger.Stats().Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", ledger.Stats().Evictions)
	}
}

func TestMemoryLedgerRemarkShouldNotEvict(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newTestLedger(time.Hour, 2)

	ledger.Mark(ctx, "evt_1")
	ledger.Mark(ctx, "evt_2")
	ledger.Mark(ctx, "evt_2")

	if ledger.Len() != 2 {
		t.Errorf("Expected size 2, got %d", ledger.Len())
	}
	if ledger.Stats().Evictions != 0 {
		t.Errorf("Re-marking a known event should not evict, got %d evictions", ledger.Stats().Evictions)
	}
}

func TestMemoryLedgerConcurrentMarkAndSeenShouldNotRaceOrPanic(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(Config{})
	done := make(chan bool, 200)

	for i := 0; i < 100; i++ {
		go func(id int) {
			ledger.Mark(ctx, fmt.Sprintf("evt_%d", id))
			done <- true
		}(i)
	}
	for i := 0; i < 100; i++ {
		go func(id int) {
			ledger.Seen(ctx, fmt.Sprintf("evt_%d", id))
			done <- true
		}(i)
	}

	for i := 0; i < 200; i++ {
		<-done
	}

	if ledger.Len() != 100 {
		t.Errorf("Expected 100 events, got %d", ledger.Len())
	}
}
