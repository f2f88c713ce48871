package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/xxxsen/vecapi/internal/config"
)

// s3Fetcher resolves s3://bucket/key URLs, for callers whose images live in
// a private bucket instead of behind public HTTP.
type s3Fetcher struct {
	client   *s3.Client
	maxBytes int64
}

func newS3Fetcher(cfg config.FetchConfig) (*s3Fetcher, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.S3.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3.Region))
	}
	if cfg.S3.SecretID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.SecretID, cfg.S3.SecretKey, ""),
		))
	}
	awscfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePath
	})
	return &s3Fetcher{client: client, maxBytes: cfg.MaxBytes}, nil
}

func (f *s3Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	bucket, key, err := splitS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readCapped(resp.Body, f.maxBytes)
}

func splitS3URL(rawURL string) (string, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	bucket := parsed.Host
	key := strings.TrimPrefix(parsed.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 url: %s", rawURL)
	}
	return bucket, key, nil
}
