// Package gcs provides a Google Cloud Storage implementation of the storage adapter.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	storage "github.com/tigerroll/durable/pkg/durable/adapter/storage"
	storageconfig "github.com/tigerroll/durable/pkg/durable/adapter/storage/config"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// ProviderType is the storage type handled by this adapter.
const ProviderType = "gcs"

func init() {
	storage.RegisterAdapter(ProviderType, func(ctx context.Context, cfg storageconfig.StorageConfig, name string) (storage.StorageConnection, error) {
		return NewGCSAdapter(ctx, cfg, name)
	})
}

type gcsAdapter struct {
	cfg    storageconfig.StorageConfig
	name   string
	client *gcstorage.Client
}

var _ storage.StorageConnection = (*gcsAdapter)(nil)

// ClientOptions builds the client options for cfg. Without a credentials file the
// application default credentials are used; with an endpoint and no credentials the
// client runs unauthenticated, which is what emulators expect.
func ClientOptions(cfg storageconfig.StorageConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
		if cfg.CredentialsFile == "" {
			opts = append(opts, option.WithoutAuthentication())
		}
	}
	return opts
}

// NewGCSAdapter creates a client for cfg. BucketName is required.
func NewGCSAdapter(ctx context.Context, cfg storageconfig.StorageConfig, name string) (storage.StorageConnection, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("gcs storage adapter '%s': bucket_name must be specified in configuration", name)
	}
	client, err := gcstorage.NewClient(ctx, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}
	logger.Debugf("GCS storage adapter '%s' created for bucket '%s'.", name, cfg.BucketName)
	return &gcsAdapter{cfg: cfg, name: name, client: client}, nil
}

func (a *gcsAdapter) Type() string                        { return ProviderType }
func (a *gcsAdapter) Name() string                        { return a.name }
func (a *gcsAdapter) Config() storageconfig.StorageConfig { return a.cfg }

func (a *gcsAdapter) Close() error {
	return a.client.Close()
}

func (a *gcsAdapter) bucket(name string) *gcstorage.BucketHandle {
	if name == "" {
		name = a.cfg.BucketName
	}
	return a.client.Bucket(name)
}

func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	w := a.bucket(bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload object '%s': %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object '%s': %w", objectName, err)
	}
	return nil
}

func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	r, err := a.bucket(bucket).Object(objectName).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcstorage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, objectName)
		}
		return nil, fmt.Errorf("failed to open object '%s': %w", objectName, err)
	}
	return r, nil
}

func (a *gcsAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	it := a.bucket(bucket).Objects(ctx, &gcstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list objects with prefix '%s': %w", prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	err := a.bucket(bucket).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, gcstorage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object '%s': %w", objectName, err)
	}
	return nil
}
