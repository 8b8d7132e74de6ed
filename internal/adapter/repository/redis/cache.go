package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/usecase"
)

// CurrencyCache keeps each owner's current currency name in Redis in front of
// a CurrencyRepository. Misses are never cached.
type CurrencyCache struct {
	usecase.CurrencyRepository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCurrencyCache wraps next with a read-through cache.
func NewCurrencyCache(next usecase.CurrencyRepository, client *redis.Client, ttl time.Duration) *CurrencyCache {
	return &CurrencyCache{
		CurrencyRepository: next,
		client:             client,
		prefix:             "currency:current:",
		ttl:                ttl,
	}
}

// CurrentName serves from Redis when possible. Redis failures fall back to the
// wrapped repository.
func (c *CurrencyCache) CurrentName(ctx context.Context, ownerID string) (string, error) {
	key := c.prefix + ownerID

	name, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("currency cache read failed")
	}

	name, err = c.CurrencyRepository.CurrentName(ctx, ownerID)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, name, c.ttl).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("currency cache write failed")
	}
	return name, nil
}

// ClearCurrent drops the cached name along with the owner's current row. A
// failed Del is only logged: the entry then lives out its TTL.
func (c *CurrencyCache) ClearCurrent(ctx context.Context, tx usecase.Transaction, ownerID string) error {
	if err := c.CurrencyRepository.ClearCurrent(ctx, tx, ownerID); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.prefix+ownerID).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("currency cache invalidation failed")
	}
	return nil
}
