package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NazarKuzyk/TodoList/internal/config"
	"github.com/NazarKuzyk/TodoList/internal/models"
)

type PoolConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        logger.LogLevel
}

func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Driver:          "sqlite",
		DSN:             "todolist.db",
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		LogLevel:        logger.Info,
	}
}

// NewPoolConfig maps the loaded application config onto pool settings.
func NewPoolConfig(cfg *config.Config) *PoolConfig {
	pc := DefaultPoolConfig()
	pc.Driver = cfg.Database.Driver
	pc.MaxOpenConns = cfg.Database.MaxOpenConns
	pc.MaxIdleConns = cfg.Database.MaxIdleConns
	pc.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	pc.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime

	if cfg.Database.Driver == "postgres" {
		pc.DSN = cfg.GetDatabaseDSN()
	} else {
		pc.DSN = cfg.Database.Path
	}

	if cfg.IsProduction() {
		pc.LogLevel = logger.Warn
	}

	return pc
}

type DatabasePool struct {
	DB     *gorm.DB
	config *PoolConfig
}

func NewDatabasePool(config *PoolConfig) (*DatabasePool, error) {
	if config == nil {
		return nil, errors.New("pool config is required")
	}

	if config.DSN == "" {
		return nil, errors.New("database DSN is required")
	}

	if config.MaxOpenConns <= 0 || config.MaxIdleConns < 0 {
		return nil, fmt.Errorf("invalid connection limits: open=%d idle=%d", config.MaxOpenConns, config.MaxIdleConns)
	}

	if config.ConnMaxLifetime < 0 || config.ConnMaxIdleTime < 0 {
		return nil, errors.New("connection lifetimes must not be negative")
	}

	var dialector gorm.Dialector
	switch config.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(config.DSN)
	case "postgres":
		dialector = postgres.Open(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(config.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	return &DatabasePool{DB: db, config: config}, nil
}

// Migrate creates or updates the users and tasks tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Task{})
}

func (p *DatabasePool) Migrate() error {
	if p.DB == nil {
		return errors.New("database not connected")
	}
	return Migrate(p.DB)
}

func (p *DatabasePool) Health() error {
	if p.DB == nil {
		return errors.New("database not connected")
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

func (p *DatabasePool) Stats() map[string]interface{} {
	if p.DB == nil {
		return map[string]interface{}{"error": "database not connected"}
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	stats := sqlDB.Stats()
	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_open_connections": stats.MaxOpenConnections,
	}
}

func (p *DatabasePool) Close() error {
	if p.DB == nil {
		return nil
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
