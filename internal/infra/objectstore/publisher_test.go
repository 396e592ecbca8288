package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/incidentiq/datagen/internal/config"
	"github.com/incidentiq/datagen/internal/domain"
)

type fakeStore struct {
	bucketErr error
	uploads   map[string]string
}

func (f *fakeStore) EnsureBucket(ctx context.Context, bucket string) error { return f.bucketErr }

func (f *fakeStore) UploadFile(ctx context.Context, bucket, key, localPath, contentType string) (int64, error) {
	if f.uploads == nil {
		f.uploads = map[string]string{}
	}
	f.uploads[bucket+"/"+key] = contentType
	return 1, nil
}

func TestPublish_KeyLayout(t *testing.T) {
	store := &fakeStore{}
	p := NewPublisherWithStore(store, "datasets")
	uri, err := p.Publish(context.Background(), "/tmp/out/customers.sql", "customers", "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if uri != "s3://datasets/customers/run-1/customers.sql" {
		t.Fatalf("unexpected uri %q", uri)
	}
	if store.uploads["datasets/customers/run-1/customers.sql"] != "application/sql" {
		t.Fatalf("unexpected uploads %v", store.uploads)
	}
}

func TestPublish_FailureIsExportError(t *testing.T) {
	p := NewPublisherWithStore(&fakeStore{bucketErr: errors.New("access denied")}, "datasets")
	_, err := p.Publish(context.Background(), "out.csv", "", "r")
	var ee *domain.ExportError
	if !errors.As(err, &ee) || ee.Op != "publish" {
		t.Fatalf("expected publish ExportError, got %v", err)
	}
}

func TestNewPublisher_RequiresConfig(t *testing.T) {
	if _, err := NewPublisher(config.ObjectStoreConfig{}); err == nil {
		t.Fatal("expected error for empty config")
	}
	p, err := NewPublisher(config.ObjectStoreConfig{Endpoint: "http://localhost:9000", Bucket: "b", AccessKey: "k", SecretKey: "s"})
	if err != nil {
		t.Fatalf("expected client construction without network, got %v", err)
	}
	if p.bucket != "b" {
		t.Fatalf("unexpected bucket %q", p.bucket)
	}
}
