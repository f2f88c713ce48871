package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vecapi/internal/config"
	"github.com/xxxsen/vecapi/internal/encoder"
	"github.com/xxxsen/vecapi/internal/fetch"
	"github.com/xxxsen/vecapi/internal/pkg/errs"
)

type EncodeService struct {
	manager *encoder.Manager
	fetcher *fetch.Client
	text    config.ModalityConfig
	image   config.ModalityConfig
}

func NewEncodeService(manager *encoder.Manager, fetcher *fetch.Client, text, image config.ModalityConfig) *EncodeService {
	return &EncodeService{
		manager: manager,
		fetcher: fetcher,
		text:    text,
		image:   image,
	}
}

func (s *EncodeService) EncodeText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EncodeTextBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *EncodeService) EncodeTextBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts list cannot be empty", errs.ErrInvalid)
	}
	if s.text.MaxBatch > 0 && len(texts) > s.text.MaxBatch {
		return nil, fmt.Errorf("%w: batch exceeds limit of %d texts", errs.ErrInvalid, s.text.MaxBatch)
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: text at index %d is empty", errs.ErrInvalid, i)
		}
		if s.text.MaxInputChars > 0 && len(text) > s.text.MaxInputChars {
			return nil, fmt.Errorf("%w: text at index %d exceeds %d chars", errs.ErrInvalid, i, s.text.MaxInputChars)
		}
	}
	vecs, err := s.manager.EncodeTexts(ctx, texts)
	if err != nil {
		if errors.Is(err, encoder.ErrUnavailable) {
			return nil, fmt.Errorf("text %w", errs.ErrUnavailable)
		}
		return nil, err
	}
	s.checkDims(ctx, vecs, s.text.ExpectDims, "text")
	return vecs, nil
}

func (s *EncodeService) EncodeImage(ctx context.Context, imageURL string) ([]float32, error) {
	vecs, err := s.EncodeImageBatch(ctx, []string{imageURL})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *EncodeService) EncodeImageBatch(ctx context.Context, imageURLs []string) ([][]float32, error) {
	if len(imageURLs) == 0 {
		return nil, fmt.Errorf("%w: image_urls list cannot be empty", errs.ErrInvalid)
	}
	if s.image.MaxBatch > 0 && len(imageURLs) > s.image.MaxBatch {
		return nil, fmt.Errorf("%w: batch exceeds limit of %d images", errs.ErrInvalid, s.image.MaxBatch)
	}
	for i, rawURL := range imageURLs {
		if strings.TrimSpace(rawURL) == "" {
			return nil, fmt.Errorf("%w: image_url at index %d is empty", errs.ErrInvalid, i)
		}
	}
	images, err := s.fetcher.FetchAll(ctx, imageURLs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrFetchFailed, err)
	}
	vecs, err := s.manager.EncodeImages(ctx, images)
	if err != nil {
		if errors.Is(err, encoder.ErrUnavailable) {
			return nil, fmt.Errorf("image %w", errs.ErrUnavailable)
		}
		return nil, err
	}
	s.checkDims(ctx, vecs, s.image.ExpectDims, "image")
	return vecs, nil
}

func (s *EncodeService) TextModelName() string {
	return s.manager.TextModelName()
}

func (s *EncodeService) ImageModelName() string {
	return s.manager.ImageModelName()
}

func (s *EncodeService) checkDims(ctx context.Context, vecs [][]float32, expect int, modality string) {
	if expect <= 0 || len(vecs) == 0 {
		return
	}
	if len(vecs[0]) != expect {
		logutil.GetLogger(ctx).Warn("embedding dimensions differ from configured expectation",
			zap.String("modality", modality),
			zap.Int("expect", expect),
			zap.Int("got", len(vecs[0])),
		)
	}
}
