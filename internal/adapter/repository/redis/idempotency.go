package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessingMarker is stored while the first request for a key is in flight.
const ProcessingMarker = "processing"

// claimScript returns the stored value, or claims the key and returns nil.
// Doing both in one script keeps a concurrent duplicate from slipping in
// between the read and the write.
var claimScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	return current
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return false
`)

// IdempotencyStore implements usecase.IdempotencyStore.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, prefix: "idempotency:"}
}

func (s *IdempotencyStore) key(k string) string { return s.prefix + k }

// CheckAndSet claims k with response (ProcessingMarker when nil). If k is
// already held it reports true together with what is stored.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, k string, response []byte, ttl time.Duration) (bool, []byte, error) {
	value := []byte(ProcessingMarker)
	if response != nil {
		value = response
	}

	stored, err := claimScript.Run(ctx, s.client, []string{s.key(k)}, value, ttl.Milliseconds()).Text()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil, nil
	case err != nil:
		return false, nil, err
	}
	return true, []byte(stored), nil
}

// Update replaces the marker with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, k string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(k), response, ttl).Err()
}

// Release forgets k so a failed request can be retried with it.
func (s *IdempotencyStore) Release(ctx context.Context, k string) error {
	return s.client.Del(ctx, s.key(k)).Err()
}
