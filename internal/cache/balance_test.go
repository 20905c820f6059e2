package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
)

func TestBalanceCache(t *testing.T) {
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := &BalanceCache{redis: db, ttl: 30 * time.Second}

		mock.ExpectGet("loyalty:balance:user-1").SetVal("250")

		balance, ok := c.Get(ctx, "user-1")
		assert.True(t, ok)
		assert.Equal(t, int64(250), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := &BalanceCache{redis: db, ttl: 30 * time.Second}

		mock.ExpectGet("loyalty:balance:user-1").RedisNil()

		_, ok := c.Get(ctx, "user-1")
		assert.False(t, ok)
	})

	t.Run("corrupt value treated as miss", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := &BalanceCache{redis: db, ttl: 30 * time.Second}

		mock.ExpectGet("loyalty:balance:user-1").SetVal("not-a-number")

		_, ok := c.Get(ctx, "user-1")
		assert.False(t, ok)
	})

	t.Run("set", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := &BalanceCache{redis: db, ttl: 30 * time.Second}

		mock.ExpectSet("loyalty:balance:user-1", "120", 30*time.Second).SetVal("OK")

		c.Set(ctx, "user-1", 120)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalidate", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		c := &BalanceCache{redis: db, ttl: 30 * time.Second}

		mock.ExpectDel("loyalty:balance:user-1").SetVal(1)

		c.Invalidate(ctx, "user-1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil client disables the cache", func(t *testing.T) {
		c := NewBalanceCache(nil)

		_, ok := c.Get(ctx, "user-1")
		assert.False(t, ok)
		c.Set(ctx, "user-1", 10)
		c.Invalidate(ctx, "user-1")
	})
}
