package repo_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/vecapi/internal/config"
	"github.com/xxxsen/vecapi/internal/db"
	"github.com/xxxsen/vecapi/internal/model"
	"github.com/xxxsen/vecapi/internal/repo"
)

func openTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "vecapi",
		Password: "vecapi_pass",
		DBName:   "vecapi_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return conn, func() {
		_, _ = conn.Exec("DELETE FROM embedding_cache")
		_ = conn.Close()
	}
}

func TestEmbeddingCacheRepoSaveGet(t *testing.T) {
	conn, cleanup := openTestDB(t)
	defer cleanup()

	r := repo.NewEmbeddingCacheRepo(conn)
	item := &model.EmbeddingCacheItem{
		ModelName:   "test-model",
		Modality:    "text",
		ContentHash: "hash-1",
		Embedding:   []float32{0.1, 0.2, 0.3},
		Ctime:       time.Now().Unix(),
	}
	require.NoError(t, r.Save(context.Background(), item))

	vec, ok, err := r.Get(context.Background(), "test-model", "text", "hash-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, vec, 3)
	require.InDelta(t, 0.2, vec[1], 1e-6)

	_, ok, err = r.Get(context.Background(), "test-model", "text", "hash-missing")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = r.Get(context.Background(), "other-model", "text", "hash-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEmbeddingCacheRepoSaveOverwrites(t *testing.T) {
	conn, cleanup := openTestDB(t)
	defer cleanup()

	r := repo.NewEmbeddingCacheRepo(conn)
	item := &model.EmbeddingCacheItem{
		ModelName:   "test-model",
		Modality:    "image",
		ContentHash: "hash-2",
		Embedding:   []float32{1, 2},
		Ctime:       time.Now().Unix(),
	}
	require.NoError(t, r.Save(context.Background(), item))

	item.Embedding = []float32{3, 4}
	require.NoError(t, r.Save(context.Background(), item))

	vec, ok, err := r.Get(context.Background(), "test-model", "image", "hash-2")
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 3, vec[0], 1e-6)
}

func TestEmbeddingCacheRepoDeleteBefore(t *testing.T) {
	conn, cleanup := openTestDB(t)
	defer cleanup()

	r := repo.NewEmbeddingCacheRepo(conn)
	now := time.Now().Unix()
	old := &model.EmbeddingCacheItem{
		ModelName:   "test-model",
		Modality:    "text",
		ContentHash: "hash-old",
		Embedding:   []float32{1},
		Ctime:       now - 3600,
	}
	fresh := &model.EmbeddingCacheItem{
		ModelName:   "test-model",
		Modality:    "text",
		ContentHash: "hash-fresh",
		Embedding:   []float32{2},
		Ctime:       now,
	}
	require.NoError(t, r.Save(context.Background(), old))
	require.NoError(t, r.Save(context.Background(), fresh))

	deleted, err := r.DeleteBefore(context.Background(), now-60)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	count, err := r.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
