package ratelimit

import (
	"context"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseIfOwner deletes the marker only when it still carries our token, so
// an expired marker re-taken by a newer request survives.
var releaseIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// inflightMarker tracks one outstanding contact submission per client.
type inflightMarker struct {
	client redis.UniversalClient
}

// mark claims key for inflightTTL. A held key yields ErrInFlight.
func (m inflightMarker) mark(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := m.client.SetNX(ctx, key, token, inflightTTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInFlight
	}
	return func() {
		_ = releaseIfOwner.Run(context.WithoutCancel(ctx), m.client, []string{key}, token).Err()
	}, nil
}
