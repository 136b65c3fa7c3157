package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// cacheTTL bounds how stale a cached aggregate may get; writes also delete
// the keys they can name.
const cacheTTL = 60 * time.Second

// initRedis initializes the Redis connection
func initRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis:6379"
	}

	opt, err := redis.ParseURL(fmt.Sprintf("redis://%s", redisURL))
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	redisClient = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	return nil
}

func balanceCacheKey(userID string) string {
	return "balance:" + userID
}

func budgetsCacheKey(userID, periodKey string) string {
	return "budgets:" + userID + ":" + periodKey
}

func historyCacheKey(userID string, days int) string {
	return fmt.Sprintf("history:%s:%d", userID, days)
}

// cacheGet loads a cached JSON value into dest; a miss, a decode failure, or
// a missing Redis client all just report false.
func cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if redisClient == nil {
		return false
	}
	cached, err := redisClient.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), dest) == nil
}

func cacheSet(ctx context.Context, key string, v interface{}) {
	if redisClient == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		redisClient.SetEx(ctx, key, data, cacheTTL)
	}
}

// invalidateUserCache drops the user's cached aggregates after a write. Keys
// parameterized by older periods or window sizes age out via the TTL.
func invalidateUserCache(ctx context.Context, userID string) {
	if redisClient == nil {
		return
	}
	redisClient.Del(ctx,
		balanceCacheKey(userID),
		budgetsCacheKey(userID, currentPeriodKey(time.Now())),
	)
}
