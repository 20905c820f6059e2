package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// BalanceCache keeps recently read balances in Redis so the balance-enquiry
// endpoint can skip the database. Mutations must invalidate; stale entries
// expire on their own after the TTL. A nil Redis client disables the cache.
type BalanceCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewBalanceCache(redisClient *redis.Client) *BalanceCache {
	viper.SetDefault("loyalty.balance_cache_ttl", 30*time.Second)
	return &BalanceCache{
		redis: redisClient,
		ttl:   viper.GetDuration("loyalty.balance_cache_ttl"),
	}
}

func balanceKey(userID string) string {
	return fmt.Sprintf("loyalty:balance:%s", userID)
}

// Get returns the cached balance and whether it was present.
func (c *BalanceCache) Get(ctx context.Context, userID string) (int64, bool) {
	if c.redis == nil {
		return 0, false
	}
	val, err := c.redis.Get(ctx, balanceKey(userID)).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		log.Printf("[CACHE] Balance lookup failed for user %s: %v", userID, err)
		return 0, false
	}
	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return balance, true
}

func (c *BalanceCache) Set(ctx context.Context, userID string, balance int64) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, balanceKey(userID), strconv.FormatInt(balance, 10), c.ttl).Err(); err != nil {
		log.Printf("[CACHE] Failed to cache balance for user %s: %v", userID, err)
	}
}

func (c *BalanceCache) Invalidate(ctx context.Context, userID string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, balanceKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate balance for user %s: %v", userID, err)
	}
}
