package gorm

import (
	"database/sql"

	"gorm.io/gorm"

	"github.com/tigerroll/durable/pkg/durable/adapter/database"
	dbconfig "github.com/tigerroll/durable/pkg/durable/adapter/database/config"
)

type gormConnection struct {
	name string
	db   *gorm.DB
	cfg  dbconfig.DatabaseConfig
}

var _ database.DBConnection = (*gormConnection)(nil)

func newGormConnection(name string, db *gorm.DB, cfg dbconfig.DatabaseConfig) *gormConnection {
	return &gormConnection{name: name, db: db, cfg: cfg}
}

// NewConnection wraps an already opened handle, e.g. one built on go-sqlmock in tests.
func NewConnection(name string, db *gorm.DB, cfg dbconfig.DatabaseConfig) database.DBConnection {
	return newGormConnection(name, db, cfg)
}

func (c *gormConnection) Name() string                    { return c.name }
func (c *gormConnection) Type() string                    { return c.cfg.Type }
func (c *gormConnection) DB() *gorm.DB                    { return c.db }
func (c *gormConnection) SQLDB() (*sql.DB, error)         { return c.db.DB() }
func (c *gormConnection) Config() dbconfig.DatabaseConfig { return c.cfg }

func (c *gormConnection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
