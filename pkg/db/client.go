package db

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

// Client wraps the gorm handle so callers share one place for
// transactions and connection lifecycle.
type Client struct {
	gorm *gorm.DB
}

func NewClient(cfg config.DBConfig, useSQLite bool, log *logger.Logger) (*Client, error) {
	var dialector gorm.Dialector
	if useSQLite {
		dialector = sqlite.Open(cfg.DSN)
	} else {
		dialector = postgres.Open(cfg.DSN)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "open database")
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "database handle")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if log != nil {
		ctx := log.WithField(context.Background(), "sqlite", useSQLite)
		log.Info(ctx, "database connected")
	}
	return &Client{gorm: gdb}, nil
}

// FromGorm wraps an existing gorm handle. Used by tests.
func FromGorm(gdb *gorm.DB) *Client {
	return &Client{gorm: gdb}
}

// Gorm exposes the underlying handle for repositories.
func (c *Client) Gorm() *gorm.DB {
	return c.gorm
}

// WithTx runs fn inside a transaction, rolling back on error.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.gorm.WithContext(ctx).Transaction(fn)
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.gorm.DB()
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, "database handle")
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
