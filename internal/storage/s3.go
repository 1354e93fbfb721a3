package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Region        string
	Endpoint      string // custom endpoint for minio-style deployments; empty for AWS
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string // prefix stored urls carry, e.g. https://cdn.textok.store
}

type S3Storage struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// keyFromURL derives the object key from a stored public URL.
func (s *S3Storage) keyFromURL(fileURL string) (string, error) {
	if s.publicBaseURL != "" && strings.HasPrefix(fileURL, s.publicBaseURL+"/") {
		return strings.TrimPrefix(fileURL, s.publicBaseURL+"/"), nil
	}
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("storage: parse url %q: %w", fileURL, err)
	}
	key := strings.TrimPrefix(parsed.Path, "/")
	key = strings.TrimPrefix(key, s.bucket+"/")
	if key == "" {
		return "", fmt.Errorf("storage: url %q has no object key", fileURL)
	}
	return key, nil
}

func (s *S3Storage) delete(ctx context.Context, fileURL string) error {
	key, err := s.keyFromURL(fileURL)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete %q: %w", key, err)
	}
	return nil
}

// DeleteFile removes an object. Deleting a missing object is a no-op on
// S3, which keeps the account-deletion sequence retryable.
func (s *S3Storage) DeleteFile(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return nil
	}
	return s.delete(ctx, fileURL)
}

func (s *S3Storage) DeleteTTSFile(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return nil
	}
	return s.delete(ctx, fileURL)
}
