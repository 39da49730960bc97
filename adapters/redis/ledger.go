// Package redis keeps the webhook event ledger in Redis so that every
// instance behind the load balancer shares it.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lborres/kalma/core"
)

const (
	defaultPrefix = "kalma:webhook:event:"
	defaultTTL    = 72 * time.Hour
	dialTimeout   = 5 * time.Second
)

type Ledger struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

var _ core.EventLedger = (*Ledger)(nil)

// Connect dials Redis and verifies the connection with a ping
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewLedger wraps a client. A zero ttl keeps entries for 72 hours, longer
// than the provider's retry window.
func NewLedger(rdb *goredis.Client, ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Ledger{rdb: rdb, prefix: defaultPrefix, ttl: ttl}
}

func (l *Ledger) key(eventID string) string {
	return l.prefix + eventID
}

func (l *Ledger) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.rdb.Exists(ctx, l.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Mark records an event id. Marking twice is harmless.
func (l *Ledger) Mark(ctx context.Context, eventID string) error {
	if err := l.rdb.SetNX(ctx, l.key(eventID), 1, l.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}
