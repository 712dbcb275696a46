// Package storage defines the object storage abstraction used by the blob-backed
// job state store. Adapters exist for the local file system and Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	storageconfig "github.com/tigerroll/durable/pkg/durable/adapter/storage/config"
	"github.com/tigerroll/durable/pkg/durable/core/config"
)

// ErrObjectNotFound is returned by Download when the object does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// StorageExecutor defines generic object operations.
type StorageExecutor interface {
	// Upload writes data to bucket/objectName, replacing any existing object.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download opens bucket/objectName. The caller closes the returned reader.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects calls fn for each object under prefix.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject removes bucket/objectName. Deleting a missing object is not an error.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// StorageConnection is a named, configured object store.
type StorageConnection interface {
	StorageExecutor
	Name() string
	Type() string
	Config() storageconfig.StorageConfig
	Close() error
}

// AdapterFactory opens a connection for one storage type.
type AdapterFactory func(ctx context.Context, cfg storageconfig.StorageConfig, name string) (StorageConnection, error)

var (
	adaptersMu sync.RWMutex
	adapters   = make(map[string]AdapterFactory)
)

// RegisterAdapter makes a storage type available to Open. Adapter packages call it from init.
func RegisterAdapter(storageType string, factory AdapterFactory) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	adapters[storageType] = factory
}

// RegisteredTypes returns the registered storage types in sorted order.
func RegisteredTypes() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()
	types := make([]string, 0, len(adapters))
	for t := range adapters {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// LookupConfig decodes the storage section entry called name.
func LookupConfig(cfg *config.Config, name string) (storageconfig.StorageConfig, error) {
	var sc storageconfig.StorageConfig
	raw, ok := cfg.Durable.StorageConfigs[name]
	if !ok {
		return sc, fmt.Errorf("storage configuration '%s' not found in storage configs", name)
	}
	if err := config.DecodeSection(raw, &sc); err != nil {
		return sc, fmt.Errorf("failed to decode storage config for '%s': %w", name, err)
	}
	return sc, nil
}

// Open opens the connection called name using the adapter registered for its type.
func Open(ctx context.Context, cfg *config.Config, name string) (StorageConnection, error) {
	sc, err := LookupConfig(cfg, name)
	if err != nil {
		return nil, err
	}
	adaptersMu.RLock()
	factory, ok := adapters[sc.Type]
	adaptersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no storage adapter registered for type '%s' (known: %v)", sc.Type, RegisteredTypes())
	}
	return factory(ctx, sc, name)
}
