package embedcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// redisStore shares cache entries across replicas. Errors degrade to a
// cache miss; the backend encoder still serves the request.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, key Key) ([]float32, bool) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logutil.GetLogger(ctx).Warn("embedding cache get failed (redis)", zap.Error(err))
		}
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		logutil.GetLogger(ctx).Warn("embedding cache entry corrupt (redis)", zap.Error(err))
		return nil, false
	}
	logutil.GetLogger(ctx).Debug("embedding cache hit (redis)", zap.String("modality", key.Modality))
	return vec, true
}

func (s *redisStore) Set(ctx context.Context, key Key, vec []float32) {
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err(); err != nil {
		logutil.GetLogger(ctx).Warn("embedding cache set failed (redis)", zap.Error(err))
	}
}

func (s *redisStore) redisKey(key Key) string {
	return "vecapi:emb:" + flatKey(key)
}
