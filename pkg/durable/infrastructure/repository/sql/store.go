// Package sql stores encoded job states in a relational table through GORM.
package sql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "github.com/tigerroll/durable/pkg/durable/core/domain/model"
	"github.com/tigerroll/durable/pkg/durable/core/domain/repository"
	"github.com/tigerroll/durable/pkg/durable/support/util/exception"
)

// Store is a repository.JobStateStore over one table.
type Store struct {
	db *gorm.DB
}

var _ repository.JobStateStore = (*Store)(nil)

// NewStore creates a Store on db. The schema must already exist; see Migrate.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Write upserts the record and bumps its version.
func (s *Store) Write(ctx context.Context, id model.JobID, data []byte) error {
	const op = "store.sql.Write"
	entity := JobStateEntity{ID: id.String(), Payload: data, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payload":    entity.Payload,
			"updated_at": entity.UpdatedAt,
			"version":    gorm.Expr(entity.TableName() + ".version + 1"),
		}),
	}).Create(&entity).Error
	if err != nil {
		return exception.NewDurableErrorf(op, "failed to write job state %s", id, err)
	}
	return nil
}

// Read returns the payload of id.
func (s *Store) Read(ctx context.Context, id model.JobID) ([]byte, error) {
	const op = "store.sql.Read"
	var entity JobStateEntity
	err := s.db.WithContext(ctx).Where("id = ?", id.String()).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrJobStateNotFound
	}
	if err != nil {
		return nil, exception.NewDurableErrorf(op, "failed to read job state %s", id, err)
	}
	return entity.Payload, nil
}

// Delete removes the record of id, if any.
func (s *Store) Delete(ctx context.Context, id model.JobID) error {
	const op = "store.sql.Delete"
	if err := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&JobStateEntity{}).Error; err != nil {
		return exception.NewDurableErrorf(op, "failed to delete job state %s", id, err)
	}
	return nil
}

// All lists every stored id.
func (s *Store) All(ctx context.Context) ([]model.JobID, error) {
	const op = "store.sql.All"
	var raw []string
	if err := s.db.WithContext(ctx).Model(&JobStateEntity{}).Pluck("id", &raw).Error; err != nil {
		return nil, exception.NewDurableError(op, "failed to list job states", err)
	}
	ids := make([]model.JobID, 0, len(raw))
	for _, r := range raw {
		id, err := model.ParseJobID(r)
		if err != nil {
			return nil, exception.NewDurableError(op, "corrupt job state key", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Close is a no-op: the connection belongs to the database adapter.
func (s *Store) Close() error {
	return nil
}
