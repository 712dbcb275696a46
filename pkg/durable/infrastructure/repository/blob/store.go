// Package blob stores each encoded job state as one object in an object store.
package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	storage "github.com/tigerroll/durable/pkg/durable/adapter/storage"
	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

const (
	objectSuffix = ".state"
	contentType  = "application/octet-stream"
)

// Store is a repository.JobStateStore over a storage connection.
// Objects are named <prefix><job id>.state in the connection's default bucket.
type Store struct {
	conn   storage.StorageConnection
	prefix string
}

var _ repository.JobStateStore = (*Store)(nil)

// NewStore creates a Store writing under prefix.
func NewStore(conn storage.StorageConnection, prefix string) *Store {
	return &Store{conn: conn, prefix: prefix}
}

func (s *Store) objectName(id model.JobID) string {
	return s.prefix + id.String() + objectSuffix
}

func (s *Store) Write(ctx context.Context, id model.JobID, data []byte) error {
	if err := s.conn.Upload(ctx, "", s.objectName(id), bytes.NewReader(data), contentType); err != nil {
		return exception.NewDurableErrorf("store.blob.Write", "failed to write state of job %s", id, err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, id model.JobID) ([]byte, error) {
	const op = "store.blob.Read"
	r, err := s.conn.Download(ctx, "", s.objectName(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, repository.ErrJobStateNotFound
		}
		return nil, exception.NewDurableErrorf(op, "failed to open state of job %s", id, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, exception.NewDurableErrorf(op, "failed to read state of job %s", id, err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, id model.JobID) error {
	if err := s.conn.DeleteObject(ctx, "", s.objectName(id)); err != nil {
		return exception.NewDurableErrorf("store.blob.Delete", "failed to delete state of job %s", id, err)
	}
	return nil
}

// All lists the prefix. Objects whose names do not parse as job ids are skipped.
func (s *Store) All(ctx context.Context) ([]model.JobID, error) {
	var ids []model.JobID
	err := s.conn.ListObjects(ctx, "", s.prefix, func(name string) error {
		if !strings.HasSuffix(name, objectSuffix) {
			return nil
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, s.prefix), objectSuffix)
		id, err := model.ParseJobID(raw)
		if err != nil {
			logger.Warnf("Skipping object '%s': not a job state.", name)
			return nil
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, exception.NewDurableError("store.blob.All", "failed to list job states", err)
	}
	return ids, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}
