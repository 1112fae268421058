package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper records which reports were recently delivered.
type Deduper interface {
	// Claim marks key as in flight for ttl. It reports false when the key is
	// already claimed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so a later request may deliver again.
	Release(ctx context.Context, key string) error
}

// MemoryDeduper keeps claims in process memory. Suitable for a single replica.
type MemoryDeduper struct {
	mu     sync.Mutex
	claims map[string]time.Time
	now    func() time.Time
}

// NewMemoryDeduper creates an empty in-memory deduper.
func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{
		claims: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (d *MemoryDeduper) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if exp, ok := d.claims[key]; ok && now.Before(exp) {
		return false, nil
	}
	d.claims[key] = now.Add(ttl)
	d.sweep(now)
	return true, nil
}

func (d *MemoryDeduper) Release(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.claims, key)
	return nil
}

// sweep drops expired claims. Caller holds mu.
func (d *MemoryDeduper) sweep(now time.Time) {
	for k, exp := range d.claims {
		if !now.Before(exp) {
			delete(d.claims, k)
		}
	}
}

// RedisDeduper shares claims across replicas using SET NX with expiry.
type RedisDeduper struct {
	client redis.Cmdable
	prefix string
}

// NewRedisDeduper creates a deduper whose keys live under prefix.
func NewRedisDeduper(client redis.Cmdable, prefix string) *RedisDeduper {
	if prefix == "" {
		prefix = "subsidy:delivery:"
	}
	return &RedisDeduper{client: client, prefix: prefix}
}

func (d *RedisDeduper) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim delivery key: %w", err)
	}
	return ok, nil
}

func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, d.prefix+key).Err(); err != nil {
		return fmt.Errorf("release delivery key: %w", err)
	}
	return nil
}
