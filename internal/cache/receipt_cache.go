package cache

import (
	"context"
	"errors"
	"time"

	"go-kiosk-pos/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const receiptKeyPrefix = "receipt:"

// ReceiptCache keeps stored receipt payloads in Redis. A nil cache or client
// behaves as an always-miss cache.
type ReceiptCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReceiptCache(rdb *redis.Client, ttl time.Duration) *ReceiptCache {
	return &ReceiptCache{rdb: rdb, ttl: ttl}
}

func (c *ReceiptCache) Get(ctx context.Context, receiptNo string) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, receiptKeyPrefix+receiptNo).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx).Err(err).Str("receipt_no", receiptNo).Msg("receipt cache read failed")
		}
		return nil, false
	}
	return b, true
}

// Set is best effort; a failed write only costs a database read later.
func (c *ReceiptCache) Set(ctx context.Context, receiptNo string, payload []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(context.WithoutCancel(ctx), receiptKeyPrefix+receiptNo, payload, c.ttl).Err(); err != nil {
		logger.Warn(ctx).Err(err).Str("receipt_no", receiptNo).Msg("receipt cache write failed")
	}
}
