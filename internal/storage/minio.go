// Package storage keeps generated export files in a MinIO bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/skillvault/skillvault-service/internal/config"
)

type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration) (*url.URL, error)
}

type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}

func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}

func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) error {
	_, err := w.c.PutObject(ctx, bucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (w minioClientWrapper) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration) (*url.URL, error) {
	return w.c.PresignedGetObject(ctx, bucketName, objectName, expiry, url.Values{})
}

// ExportStore uploads export files and hands out time-limited download links.
type ExportStore struct {
	api    minioAPI
	bucket string
	expiry time.Duration
}

// NewExportStore connects to MinIO from cfg. It returns nil, nil when no endpoint is configured.
func NewExportStore(ctx context.Context, cfg config.StorageConfig) (*ExportStore, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return NewExportStoreWithAPI(ctx, minioClientWrapper{c: client}, cfg.Bucket, cfg.URLExpiry)
}

// NewExportStoreWithAPI allows injecting a fake API in tests.
func NewExportStoreWithAPI(ctx context.Context, api minioAPI, bucket string, expiry time.Duration) (*ExportStore, error) {
	s := &ExportStore{api: api, bucket: bucket, expiry: expiry}
	if s.expiry <= 0 {
		s.expiry = time.Hour
	}

	if err := s.ensureBucketExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}
	return s, nil
}

func (s *ExportStore) ensureBucketExists(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Upload stores data under key and returns a presigned download URL.
func (s *ExportStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := s.api.PutObject(ctx, s.bucket, key, data, contentType); err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	u, err := s.api.PresignedGetObject(ctx, s.bucket, key, s.expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return u.String(), nil
}
