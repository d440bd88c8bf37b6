package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bizdocs/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultSequenceKeyPrefix = "bizdocs:sequence:"

// sequenceTTL outlives the calendar year a counter belongs to
const sequenceTTL = 400 * 24 * time.Hour

// reserveScript raises the counter to the persisted floor when it lags
// behind, then increments it. Both steps run atomically inside Redis.
var reserveScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if current < floor then
	redis.call('SET', KEYS[1], floor)
end
local next = redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return next
`)

// RedisSequenceReserver hands out sequence candidates from an atomic Redis
// counter so that several instances never compute the same candidate.
type RedisSequenceReserver struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisSequenceReserver creates a reserver over an existing client
func NewRedisSequenceReserver(client redis.UniversalClient, keyPrefix string) *RedisSequenceReserver {
	if keyPrefix == "" {
		keyPrefix = defaultSequenceKeyPrefix
	}
	return &RedisSequenceReserver{client: client, keyPrefix: keyPrefix}
}

// Reserve returns the next candidate for yearPrefix, never less than floor+1
func (r *RedisSequenceReserver) Reserve(ctx context.Context, yearPrefix string, floor int) (int, error) {
	next, err := reserveScript.Run(ctx, r.client,
		[]string{r.keyPrefix + yearPrefix},
		floor, sequenceTTL.Milliseconds(),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to reserve sequence for %s: %w", yearPrefix, err)
	}
	return next, nil
}

// Close closes the Redis client
func (r *RedisSequenceReserver) Close() error {
	return r.client.Close()
}
