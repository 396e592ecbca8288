// Package objectstore publishes finished artifacts to S3-compatible storage.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/incidentiq/datagen/internal/config"
	"github.com/incidentiq/datagen/internal/domain"
)

// Store is the slice of an object store the Publisher needs.
type Store interface {
	EnsureBucket(ctx context.Context, bucket string) error
	UploadFile(ctx context.Context, bucket, key, localPath, contentType string) (int64, error)
}

type Publisher struct {
	store  Store
	bucket string
}

// NewPublisher connects to the configured endpoint with static credentials.
func NewPublisher(cfg config.ObjectStoreConfig) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("object store endpoint and bucket are required")
	}
	store, err := NewS3Store(cfg)
	if err != nil {
		return nil, err
	}
	return NewPublisherWithStore(store, cfg.Bucket), nil
}

func NewPublisherWithStore(store Store, bucket string) *Publisher {
	return &Publisher{store: store, bucket: bucket}
}

// Publish uploads the file at localPath under <table>/<runID>/<file name>
// and returns its s3:// URI.
func (p *Publisher) Publish(ctx context.Context, localPath, table, runID string) (string, error) {
	key := ObjectKey(table, runID, localPath)
	uri := fmt.Sprintf("s3://%s/%s", p.bucket, key)

	if err := p.store.EnsureBucket(ctx, p.bucket); err != nil {
		return "", &domain.ExportError{Path: uri, Op: "publish", Err: err}
	}
	if _, err := p.store.UploadFile(ctx, p.bucket, key, localPath, contentType(localPath)); err != nil {
		return "", &domain.ExportError{Path: uri, Op: "publish", Err: err}
	}
	return uri, nil
}

func ObjectKey(table, runID, localPath string) string {
	if table == "" {
		table = "dataset"
	}
	return path.Join(table, runID, filepath.Base(localPath))
}

func contentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".csv":
		return "text/csv"
	case ".sql":
		return "application/sql"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// S3Store implements Store with minio-go.
type S3Store struct {
	client *minio.Client
	region string
}

func NewS3Store(cfg config.ObjectStoreConfig) (*S3Store, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &S3Store{client: client, region: cfg.Region}, nil
}

func (s *S3Store) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.region})
}

func (s *S3Store) UploadFile(ctx context.Context, bucket, key, localPath, contentType string) (int64, error) {
	info, err := s.client.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}
