package encoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type TextEncoderEntry struct {
	Name    string
	Encoder ITextEncoder
}

type ImageEncoderEntry struct {
	Name    string
	Encoder IImageEncoder
}

type groupTextEncoder struct {
	items []TextEncoderEntry
}

// NewGroupTextEncoder tries entries in order and falls back on error.
func NewGroupTextEncoder(items []TextEncoderEntry) ITextEncoder {
	if len(items) == 0 {
		return nil
	}
	return &groupTextEncoder{items: items}
}

func (g *groupTextEncoder) EncodeTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Encoder == nil {
			continue
		}
		res, err := item.Encoder.EncodeTexts(ctx, texts)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("text encoder failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, fmt.Errorf("text encoder not configured")
	}
	return nil, lastErr
}

func (g *groupTextEncoder) ModelName() string {
	return joinEntryNames(len(g.items), func(i int) string { return g.items[i].Name })
}

type groupImageEncoder struct {
	items []ImageEncoderEntry
}

func NewGroupImageEncoder(items []ImageEncoderEntry) IImageEncoder {
	if len(items) == 0 {
		return nil
	}
	return &groupImageEncoder{items: items}
}

func (g *groupImageEncoder) EncodeImages(ctx context.Context, images [][]byte) ([][]float32, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Encoder == nil {
			continue
		}
		res, err := item.Encoder.EncodeImages(ctx, images)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("image encoder failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, fmt.Errorf("image encoder not configured")
	}
	return nil, lastErr
}

func (g *groupImageEncoder) ModelName() string {
	return joinEntryNames(len(g.items), func(i int) string { return g.items[i].Name })
}

func joinEntryNames(n int, name func(int) string) string {
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if name(i) == "" {
			continue
		}
		names = append(names, name(i))
	}
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "|")
}
