package encoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable marks a provider that is present in config but cannot
// serve (missing api key, unconfigured modality).
var ErrUnavailable = errors.New("encoder provider unavailable")

type ITextProvider interface {
	Name() string
	EmbedTexts(ctx context.Context, model string, texts []string) ([][]float32, error)
}

type IImageProvider interface {
	Name() string
	EmbedImages(ctx context.Context, model string, images [][]byte) ([][]float32, error)
}

// ITextEncoder is a text provider bound to a concrete model.
type ITextEncoder interface {
	EncodeTexts(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// IImageEncoder is an image provider bound to a concrete model.
type IImageEncoder interface {
	EncodeImages(ctx context.Context, images [][]byte) ([][]float32, error)
	ModelName() string
}

type textEncoder struct {
	provider ITextProvider
	model    string
}

func NewTextEncoder(p ITextProvider, model string) ITextEncoder {
	return &textEncoder{provider: p, model: model}
}

func (e *textEncoder) EncodeTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.provider.EmbedTexts(ctx, e.model, texts)
}

func (e *textEncoder) ModelName() string {
	return e.model
}

type imageEncoder struct {
	provider IImageProvider
	model    string
}

func NewImageEncoder(p IImageProvider, model string) IImageEncoder {
	return &imageEncoder{provider: p, model: model}
}

func (e *imageEncoder) EncodeImages(ctx context.Context, images [][]byte) ([][]float32, error) {
	return e.provider.EmbedImages(ctx, e.model, images)
}

func (e *imageEncoder) ModelName() string {
	return e.model
}

type TextFactory func(args interface{}) (ITextProvider, error)
type ImageFactory func(args interface{}) (IImageProvider, error)

var (
	textRegistry  = map[string]TextFactory{}
	imageRegistry = map[string]ImageFactory{}
)

func RegisterText(name string, factory TextFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	textRegistry[key] = factory
}

func RegisterImage(name string, factory ImageFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	imageRegistry[key] = factory
}

func NewTextProvider(name string, args interface{}) (ITextProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("text provider name is required")
	}
	factory := textRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported text provider: %s", name)
	}
	return factory(args)
}

func NewImageProvider(name string, args interface{}) (IImageProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("image provider name is required")
	}
	factory := imageRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported image provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode provider config: %w", err)
	}
	return nil
}
