package embedcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type lruStore struct {
	cache *expirable.LRU[string, []float32]
}

func NewLRUStore(size int, ttl time.Duration) Store {
	if size <= 0 || ttl <= 0 {
		return nil
	}
	return &lruStore{
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

func (s *lruStore) Get(ctx context.Context, key Key) ([]float32, bool) {
	vec, ok := s.cache.Get(flatKey(key))
	if ok {
		logutil.GetLogger(ctx).Debug("embedding cache hit (lru)", zap.String("modality", key.Modality))
	}
	return vec, ok
}

func (s *lruStore) Set(ctx context.Context, key Key, vec []float32) {
	s.cache.Add(flatKey(key), vec)
}

func flatKey(key Key) string {
	return key.Modality + ":" + key.Model + ":" + key.ContentHash
}
