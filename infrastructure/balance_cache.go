package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"rewards/domain/entities"
	"rewards/domain/events"

	redis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	balanceKeyPrefix    = "rewards:balance:"
	generationKeyPrefix = "rewards:balance:gen:"

	// A reader holding a generation older than this just skips its write
	generationTTL = 24 * time.Hour
)

var errStaleGeneration = errors.New("balance cache generation changed")

// RedisBalanceCache keeps display balances in a Redis hash per user
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to the Redis instance at url
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewRedisBalanceCache creates a new balance cache
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{
		client: client,
		ttl:    ttl,
	}
}

func balanceKey(userID string) string {
	return balanceKeyPrefix + userID
}

func generationKey(userID string) string {
	return generationKeyPrefix + userID
}

// Get returns the cached balance. Any Redis failure counts as a miss.
func (c *RedisBalanceCache) Get(ctx context.Context, userID string) (*entities.Balance, bool) {
	values, err := c.client.HGetAll(ctx, balanceKey(userID)).Result()
	if err != nil {
		log.WithError(err).WithField("userID", userID).Warn("Balance cache read failed")
		return nil, false
	}
	if len(values) == 0 {
		return nil, false
	}

	points, err := strconv.ParseInt(values[string(entities.CurrencyPoints)], 10, 64)
	if err != nil {
		return nil, false
	}
	tickets, err := strconv.ParseInt(values[string(entities.CurrencyTickets)], 10, 64)
	if err != nil {
		return nil, false
	}
	return &entities.Balance{Points: points, Tickets: tickets}, true
}

// Generation returns the user's invalidation counter. Read it before loading
// the balance from storage and pass it to SetIfGeneration.
func (c *RedisBalanceCache) Generation(ctx context.Context, userID string) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance cache generation: %w", err)
	}
	return generation, nil
}

// SetIfGeneration stores the balance with the configured TTL unless the user
// was invalidated after generation was read. Reports whether it was stored.
func (c *RedisBalanceCache) SetIfGeneration(ctx context.Context, userID string, generation int64, balance *entities.Balance) bool {
	key, genKey := balanceKey(userID), generationKey(userID)

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				string(entities.CurrencyPoints), balance.Points,
				string(entities.CurrencyTickets), balance.Tickets,
			)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		log.WithFields(log.Fields{
			"userID":     userID,
			"generation": generation,
		}).Debug("Skipped caching a balance read before an invalidation")
	default:
		log.WithError(err).WithField("userID", userID).Warn("Balance cache write failed")
	}
	return false
}

// Invalidate drops the cached balance and bumps the user's generation
func (c *RedisBalanceCache) Invalidate(ctx context.Context, userID string) {
	genKey := generationKey(userID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, balanceKey(userID))
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("userID", userID).Warn("Balance cache invalidation failed")
	}
}

// HandleBalanceChanged is a local event handler that invalidates the user's entry after commit
func (c *RedisBalanceCache) HandleBalanceChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(events.BalanceChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	c.Invalidate(ctx, changed.UserID)
	return nil
}
