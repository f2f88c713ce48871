package encoder

import (
	"context"
	"time"
)

type ManagerConfig struct {
	TextTimeout  time.Duration
	ImageTimeout time.Duration
}

// Manager applies per-modality timeouts on top of the configured encoders.
// Either modality may be nil; callers get ErrUnavailable for it.
type Manager struct {
	text  ITextEncoder
	image IImageEncoder
	cfg   ManagerConfig
}

func NewManager(text ITextEncoder, image IImageEncoder, cfg ManagerConfig) *Manager {
	return &Manager{text: text, image: image, cfg: cfg}
}

func (m *Manager) EncodeTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if m.text == nil {
		return nil, ErrUnavailable
	}
	if m.cfg.TextTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.TextTimeout)
		defer cancel()
	}
	return m.text.EncodeTexts(ctx, texts)
}

func (m *Manager) EncodeImages(ctx context.Context, images [][]byte) ([][]float32, error) {
	if m.image == nil {
		return nil, ErrUnavailable
	}
	if m.cfg.ImageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.ImageTimeout)
		defer cancel()
	}
	return m.image.EncodeImages(ctx, images)
}

func (m *Manager) TextModelName() string {
	if m.text == nil {
		return ""
	}
	return m.text.ModelName()
}

func (m *Manager) ImageModelName() string {
	if m.image == nil {
		return ""
	}
	return m.image.ModelName()
}
