package embedcache

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vecapi/internal/model"
	"github.com/xxxsen/vecapi/internal/repo"
)

// repoStore persists embeddings in postgres so cache survives restarts.
type repoStore struct {
	repo *repo.EmbeddingCacheRepo
}

func NewRepoStore(r *repo.EmbeddingCacheRepo) Store {
	if r == nil {
		return nil
	}
	return &repoStore{repo: r}
}

func (s *repoStore) Get(ctx context.Context, key Key) ([]float32, bool) {
	vec, ok, err := s.repo.Get(ctx, key.Model, key.Modality, key.ContentHash)
	if err != nil {
		logutil.GetLogger(ctx).Warn("embedding cache get failed (db)", zap.Error(err))
		return nil, false
	}
	if ok {
		logutil.GetLogger(ctx).Debug("embedding cache hit (db)", zap.String("modality", key.Modality))
	}
	return vec, ok
}

func (s *repoStore) Set(ctx context.Context, key Key, vec []float32) {
	err := s.repo.Save(ctx, &model.EmbeddingCacheItem{
		ModelName:   key.Model,
		Modality:    key.Modality,
		ContentHash: key.ContentHash,
		Embedding:   vec,
		Ctime:       time.Now().Unix(),
	})
	if err != nil {
		logutil.GetLogger(ctx).Warn("embedding cache save failed (db)", zap.Error(err))
	}
}
