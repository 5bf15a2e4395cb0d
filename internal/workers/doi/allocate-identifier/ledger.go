package allocateidentifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bulk-doi/internal/common/database"
)

// Ledger reserves identifiers so that none is handed out twice, even when
// its registration later fails.
type Ledger interface {
	// Reserve claims doi and reports false if it was already claimed.
	Reserve(ctx context.Context, doi string) (bool, error)
}

// MemoryLedger keeps reservations for the lifetime of the process.
type MemoryLedger struct {
	mu       sync.Mutex
	reserved map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{reserved: make(map[string]struct{})}
}

func (l *MemoryLedger) Reserve(_ context.Context, doi string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.reserved[doi]; ok {
		return false, nil
	}
	l.reserved[doi] = struct{}{}
	return true, nil
}

// Len returns the number of reserved identifiers.
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.reserved)
}

// RedisLedger shares reservations between concurrent runs using SETNX.
type RedisLedger struct {
	client    *database.RedisClient
	keyPrefix string
	ttl       time.Duration
	owner     string
}

// NewRedisLedger stores reservations under keyPrefix+doi for ttl. owner is
// written as the value so a reservation can be traced back to its run.
func NewRedisLedger(client *database.RedisClient, keyPrefix string, ttl time.Duration, owner string) *RedisLedger {
	return &RedisLedger{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		owner:     owner,
	}
}

func (l *RedisLedger) Reserve(ctx context.Context, doi string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.keyPrefix+doi, l.owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("reserve %s: %w", doi, err)
	}
	return ok, nil
}
