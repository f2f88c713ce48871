package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEncoder struct {
	model string
	calls int
	seen  [][]string
}

func (c *countingEncoder) EncodeTexts(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	c.seen = append(c.seen, texts)
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{float32(len(texts[i]))}
	}
	return vecs, nil
}

func (c *countingEncoder) ModelName() string {
	return c.model
}

func TestWrapTextEncoder_CachesRepeatCalls(t *testing.T) {
	next := &countingEncoder{model: "m"}
	cached := WrapTextEncoder(next, NewLRUStore(16, time.Minute))

	first, err := cached.EncodeTexts(context.Background(), []string{"hello"})
	require.NoError(t, err)
	second, err := cached.EncodeTexts(context.Background(), []string{"hello"})
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, next.calls)
}

func TestWrapTextEncoder_PartialMissOnlyEncodesMisses(t *testing.T) {
	next := &countingEncoder{model: "m"}
	cached := WrapTextEncoder(next, NewLRUStore(16, time.Minute))

	_, err := cached.EncodeTexts(context.Background(), []string{"aa"})
	require.NoError(t, err)

	vecs, err := cached.EncodeTexts(context.Background(), []string{"bbbb", "aa", "c"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{4}, {2}, {1}}, vecs)
	require.Equal(t, 2, next.calls)
	require.Equal(t, []string{"bbbb", "c"}, next.seen[1])
}

func TestWrapTextEncoder_NilStorePassthrough(t *testing.T) {
	next := &countingEncoder{model: "m"}
	require.Equal(t, next, WrapTextEncoder(next, nil))
	require.Nil(t, NewLRUStore(0, time.Minute))
}

type shortEncoder struct{}

func (s *shortEncoder) EncodeTexts(ctx context.Context, texts []string) ([][]float32, error) {
	// drops the last vector
	vecs := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts)-1; i++ {
		vecs = append(vecs, []float32{1})
	}
	return vecs, nil
}

func (s *shortEncoder) ModelName() string { return "short" }

func TestWrapTextEncoder_ShortBackendResultErrors(t *testing.T) {
	cached := WrapTextEncoder(&shortEncoder{}, NewLRUStore(16, time.Minute))

	_, err := cached.EncodeTexts(context.Background(), []string{"a", "b"})
	require.ErrorContains(t, err, "returned 1 vectors for 2 inputs")
}

func TestCacheKey_DistinctPerModelAndModality(t *testing.T) {
	a := flatKey(Key{Modality: ModalityText, Model: "m1", ContentHash: HashText("x")})
	b := flatKey(Key{Modality: ModalityText, Model: "m2", ContentHash: HashText("x")})
	c := flatKey(Key{Modality: ModalityImage, Model: "m1", ContentHash: HashText("x")})
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)
}
