package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config describes an S3-compatible endpoint serving s3:// URLs
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	MaxBytes        int64
}

type s3Storage struct {
	client   *minio.Client
	maxBytes int64
}

// NewS3Storage creates a fetcher for s3://<bucket>/<key> URLs
func NewS3Storage(cfg S3Config) (ImageFetcher, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &s3Storage{client: client, maxBytes: cfg.MaxBytes}, nil
}

func (s *s3Storage) FetchImage(ctx context.Context, objectURL string) ([]byte, error) {
	bucket, key, err := parseObjectURL(objectURL, "s3")
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer obj.Close()

	// GetObject is lazy; Stat surfaces missing keys before reading
	if _, err := obj.Stat(); err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "NoSuchKey", "NoSuchBucket":
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}

	return readLimited(obj, s.maxBytes)
}
