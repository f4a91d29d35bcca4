package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyTokens = "quota:tokens:%s:%s:%s:%s"
	keyImages = "quota:images:%s:%s:%s:%s"

	// old buckets are never read again once their period has passed
	dayBucketTTL   = 40 * 24 * time.Hour
	monthBucketTTL = 400 * 24 * time.Hour
)

// implements Store using Redis counters
type RedisStore struct {
	client *redis.Client
}

// creates a new Redis-backed usage store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func tokensKey(actor Actor, p Period, keys PeriodKeys) string {
	return fmt.Sprintf(keyTokens, actor.Type, actor.ID, p, keys.For(p))
}

func imagesKey(actor Actor, keys PeriodKeys) string {
	return fmt.Sprintf(keyImages, actor.Type, actor.ID, PeriodMonth, keys.Month)
}

// reads the three counters in one pipeline; missing keys read as zero
func (s *RedisStore) GetUsage(ctx context.Context, actor Actor, keys PeriodKeys) (Usage, error) {
	pipe := s.client.Pipeline()
	dailyCmd := pipe.Get(ctx, tokensKey(actor, PeriodDay, keys))
	monthlyCmd := pipe.Get(ctx, tokensKey(actor, PeriodMonth, keys))
	imagesCmd := pipe.Get(ctx, imagesKey(actor, keys))

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Usage{}, fmt.Errorf("failed to read usage from redis: %w", err)
	}

	daily, err := counterValue(dailyCmd)
	if err != nil {
		return Usage{}, err
	}

	monthly, err := counterValue(monthlyCmd)
	if err != nil {
		return Usage{}, err
	}

	images, err := counterValue(imagesCmd)
	if err != nil {
		return Usage{}, err
	}

	return Usage{Daily: daily, Monthly: monthly, Images: images}, nil
}

// increments both token buckets inside MULTI/EXEC
func (s *RedisStore) AddTokens(ctx context.Context, actor Actor, keys PeriodKeys, tokens int) error {
	dayKey := tokensKey(actor, PeriodDay, keys)
	monthKey := tokensKey(actor, PeriodMonth, keys)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrBy(ctx, dayKey, int64(tokens))
		pipe.Expire(ctx, dayKey, dayBucketTTL)
		pipe.IncrBy(ctx, monthKey, int64(tokens))
		pipe.Expire(ctx, monthKey, monthBucketTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to increment token usage in redis: %w", err)
	}

	return nil
}

// increments the month image bucket
func (s *RedisStore) AddImages(ctx context.Context, actor Actor, keys PeriodKeys, images int) error {
	key := imagesKey(actor, keys)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrBy(ctx, key, int64(images))
		pipe.Expire(ctx, key, monthBucketTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to increment image usage in redis: %w", err)
	}

	return nil
}

func counterValue(cmd *redis.StringCmd) (int, error) {
	n, err := cmd.Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to parse redis counter: %w", err)
	}

	return n, nil
}
