package sql

import "time"

// JobStateEntity is the row holding one encoded job state.
type JobStateEntity struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	Payload   []byte    `gorm:"column:payload;not null"`
	Version   int       `gorm:"column:version;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName implements gorm's tabler.
func (JobStateEntity) TableName() string {
	return "durable_job_state"
}
