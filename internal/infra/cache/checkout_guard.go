package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 同じ (user, idempotency key) のチェックアウトが同時に走らないようにする
type CheckoutGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCheckoutGuard(rdb *redis.Client, ttl time.Duration) *CheckoutGuard {
	return &CheckoutGuard{rdb: rdb, ttl: ttl}
}

func (g *CheckoutGuard) key(userID int64, idemKey string) string {
	return fmt.Sprintf("checkout:inflight:%d:%s", userID, idemKey)
}

// 取れたら true。すでに誰かが持っていれば false
func (g *CheckoutGuard) Acquire(ctx context.Context, userID int64, idemKey string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, g.key(userID, idemKey), "1", g.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (g *CheckoutGuard) Release(ctx context.Context, userID int64, idemKey string) error {
	return g.rdb.Del(ctx, g.key(userID, idemKey)).Err()
}

// Redisなしで動かすとき用（単一プロセス前提）
type NoopGuard struct{}

func (NoopGuard) Acquire(ctx context.Context, userID int64, idemKey string) (bool, error) {
	return true, nil
}

func (NoopGuard) Release(ctx context.Context, userID int64, idemKey string) error {
	return nil
}
