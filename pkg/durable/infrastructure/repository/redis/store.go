// Package redis stores encoded job states as Redis strings. A set indexes the
// stored ids so All does not need to scan the keyspace.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
	"github.com/tigerroll/durable/pkg/durable/support/util/logger"
)

// Store is a repository.JobStateStore over a Redis client.
type Store struct {
	client    goredis.Cmdable
	keyPrefix string
	closer    func() error
}

var _ repository.JobStateStore = (*Store)(nil)

// New creates a Store on client. The caller owns the client lifecycle.
func New(client goredis.Cmdable, keyPrefix string) *Store {
	return &Store{client: client, keyPrefix: keyPrefix, closer: func() error { return nil }}
}

// stateKey is <prefix>job:<id>.
func (s *Store) stateKey(id string) string { return s.keyPrefix + "job:" + id }

// indexKey is the set of every stored id.
func (s *Store) indexKey() string { return s.keyPrefix + "job_ids" }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Write(ctx context.Context, id model.JobID, data []byte) error {
	key := id.String()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.stateKey(key), data, 0)
	pipe.SAdd(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return exception.NewDurableErrorf("store.redis.Write", "failed to write state of job %s", id, err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, id model.JobID) ([]byte, error) {
	data, err := s.client.Get(ctx, s.stateKey(id.String())).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrJobStateNotFound
	}
	if err != nil {
		return nil, exception.NewDurableErrorf("store.redis.Read", "failed to read state of job %s", id, err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, id model.JobID) error {
	key := id.String()
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.stateKey(key))
	pipe.SRem(ctx, s.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return exception.NewDurableErrorf("store.redis.Delete", "failed to delete state of job %s", id, err)
	}
	return nil
}

func (s *Store) All(ctx context.Context) ([]model.JobID, error) {
	members, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, exception.NewDurableError("store.redis.All", "failed to list job states", err)
	}
	ids := make([]model.JobID, 0, len(members))
	for _, m := range members {
		id, err := model.ParseJobID(m)
		if err != nil {
			logger.Warnf("Skipping index member '%s': %v", m, err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Close closes the client when the Store created it.
func (s *Store) Close() error {
	return s.closer()
}
