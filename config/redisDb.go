package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisConnectAttempts = 5

// Redis bundles the client with its lock client. A nil *Redis is valid and
// turns every helper into a no-op, so callers never need to check.
type Redis struct {
	Client *redis.Client
	Locker *redislock.Client
}

func NewRedis(client *redis.Client) *Redis {
	if client == nil {
		return nil
	}
	return &Redis{Client: client, Locker: redislock.New(client)}
}

// ConnectRedisWithRetry returns nil without error when no address is configured.
func ConnectRedisWithRetry(ctx context.Context, cfg App, logg *logrus.Logger) (*Redis, error) {
	if cfg.RedisAddress == "" {
		logg.WithFields(logrus.Fields{"field": "redis"}).Warn("REDIS_ADDRESS not set; cache, locks and rate limiting disabled")
		return nil, nil
	}

	var lastErr error
	for attempt := 1; attempt <= redisConnectAttempts; attempt++ {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			DB:       0,
			PoolSize: 100,
		})
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			logg.WithFields(logrus.Fields{"field": "redis", "attempt": attempt, "addr": cfg.RedisAddress}).Info("connected to redis")
			return NewRedis(client), nil
		}
		_ = client.Close()

		sleep := backoff(attempt)
		logg.WithFields(logrus.Fields{
			"field":   "redis",
			"attempt": attempt,
		}).Warn("failed to connect redis; retrying in " + sleep.String() + ": " + lastErr.Error())
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect redis: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}
	return nil, fmt.Errorf("connect redis: %w", lastErr)
}

func (r *Redis) GetObject(ctx context.Context, key string, dest any) (bool, error) {
	if r == nil || r.Client == nil {
		return false, nil
	}
	val, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetObject(ctx context.Context, key string, obj any, exp time.Duration) error {
	if r == nil || r.Client == nil {
		return nil
	}
	objInByte, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, objInByte, exp).Err()
}

// RemoveByPrefix drops every key under prefix. Used to invalidate cached reports.
func (r *Redis) RemoveByPrefix(ctx context.Context, prefix string) error {
	if r == nil || r.Client == nil {
		return nil
	}
	iter := r.Client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

// Obtain tries to take a short lock. It returns (nil, nil) when Redis is not
// configured or the lock is held elsewhere; callers proceed without it.
func (r *Redis) Obtain(ctx context.Context, key string, ttl time.Duration) (*redislock.Lock, error) {
	if r == nil || r.Locker == nil {
		return nil, nil
	}
	lock, err := r.Locker.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 10),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, nil
	}
	return lock, err
}

func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
