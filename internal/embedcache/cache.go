// Package embedcache layers caching stores over encoders. Lookups are
// batch-aware: only cache misses reach the wrapped encoder, and results
// come back in input order.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/xxxsen/vecapi/internal/encoder"
)

const (
	ModalityText  = "text"
	ModalityImage = "image"
)

type Key struct {
	Modality    string
	Model       string
	ContentHash string
}

type Store interface {
	Get(ctx context.Context, key Key) ([]float32, bool)
	// Set must never fail the request; implementations log and move on.
	Set(ctx context.Context, key Key, vec []float32)
}

func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func WrapTextEncoder(next encoder.ITextEncoder, st Store) encoder.ITextEncoder {
	if next == nil || st == nil {
		return next
	}
	return &cachedTextEncoder{next: next, store: st}
}

func WrapImageEncoder(next encoder.IImageEncoder, st Store) encoder.IImageEncoder {
	if next == nil || st == nil {
		return next
	}
	return &cachedImageEncoder{next: next, store: st}
}

type cachedTextEncoder struct {
	next  encoder.ITextEncoder
	store Store
}

func (e *cachedTextEncoder) EncodeTexts(ctx context.Context, texts []string) ([][]float32, error) {
	keys := make([]Key, len(texts))
	for i, text := range texts {
		keys[i] = Key{Modality: ModalityText, Model: e.next.ModelName(), ContentHash: HashText(text)}
	}
	return fillThrough(ctx, e.store, keys, texts, e.next.EncodeTexts)
}

func (e *cachedTextEncoder) ModelName() string {
	return e.next.ModelName()
}

type cachedImageEncoder struct {
	next  encoder.IImageEncoder
	store Store
}

func (e *cachedImageEncoder) EncodeImages(ctx context.Context, images [][]byte) ([][]float32, error) {
	keys := make([]Key, len(images))
	for i, img := range images {
		keys[i] = Key{Modality: ModalityImage, Model: e.next.ModelName(), ContentHash: HashBytes(img)}
	}
	return fillThrough(ctx, e.store, keys, images, e.next.EncodeImages)
}

func (e *cachedImageEncoder) ModelName() string {
	return e.next.ModelName()
}

func fillThrough[T any](ctx context.Context, st Store, keys []Key, inputs []T, encode func(context.Context, []T) ([][]float32, error)) ([][]float32, error) {
	result := make([][]float32, len(inputs))
	missIdx := make([]int, 0, len(inputs))
	missInputs := make([]T, 0, len(inputs))
	for i, key := range keys {
		if vec, ok := st.Get(ctx, key); ok {
			result[i] = cloneVector(vec)
			continue
		}
		missIdx = append(missIdx, i)
		missInputs = append(missInputs, inputs[i])
	}
	if len(missInputs) == 0 {
		return result, nil
	}
	vecs, err := encode(ctx, missInputs)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missInputs) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d inputs", len(vecs), len(missInputs))
	}
	for j, i := range missIdx {
		result[i] = vecs[j]
		st.Set(ctx, keys[i], cloneVector(vecs[j]))
	}
	return result, nil
}

func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
