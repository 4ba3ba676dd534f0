// Package objectstore uploads application documents to an S3-compatible
// bucket and hands back a stable URL for each stored object.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/config"
)

// Uploader stores a document and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
}

type s3Uploader struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Uploader builds an Uploader from the storage configuration. A custom
// endpoint points the client at an S3-compatible server such as MinIO.
func NewS3Uploader(ctx context.Context, cfg config.StorageConfig) (Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		region:  cfg.Region,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// StorageKey builds a collision-free object key under folder, preserving the
// original file name for download friendliness.
func StorageKey(folder, filename string) string {
	return path.Join(folder, uuid.NewString()+"-"+path.Base(filename))
}

func (u *s3Uploader) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return u.objectURL(key), nil
}

func (u *s3Uploader) objectURL(key string) string {
	if u.baseURL != "" {
		return u.baseURL + "/" + key
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}
