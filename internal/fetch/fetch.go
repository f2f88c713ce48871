// Package fetch downloads image payloads referenced by request URLs.
// Fetchers are keyed by URL scheme: http/https hit the network with retry
// and a global rate limit, s3 reads straight from a bucket.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/vecapi/internal/config"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type Client struct {
	schemes        map[string]Fetcher
	maxConcurrency int
}

func NewClient(cfg config.FetchConfig) (*Client, error) {
	httpFetcher := newHTTPFetcher(cfg)
	schemes := map[string]Fetcher{
		"http":  httpFetcher,
		"https": httpFetcher,
	}
	if cfg.S3.Endpoint != "" || cfg.S3.Region != "" {
		s3Fetcher, err := newS3Fetcher(cfg)
		if err != nil {
			return nil, fmt.Errorf("init s3 fetcher: %w", err)
		}
		schemes["s3"] = s3Fetcher
	}
	return &Client{
		schemes:        schemes,
		maxConcurrency: cfg.MaxConcurrency,
	}, nil
}

func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	fetcher := c.schemes[strings.ToLower(parsed.Scheme)]
	if fetcher == nil {
		return nil, fmt.Errorf("unsupported url scheme: %q", parsed.Scheme)
	}
	return fetcher.Fetch(ctx, rawURL)
}

// FetchAll downloads all URLs concurrently, preserving order. Any failure
// fails the whole batch.
func (c *Client) FetchAll(ctx context.Context, urls []string) ([][]byte, error) {
	results := make([][]byte, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	if c.maxConcurrency > 0 {
		g.SetLimit(c.maxConcurrency)
	}
	for i, rawURL := range urls {
		g.Go(func() error {
			data, err := c.Fetch(gctx, rawURL)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", rawURL, err)
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
