package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alpost/backend/internal/models"
	"github.com/alpost/backend/pkg/config"
	"github.com/alpost/backend/pkg/logging"
)

// zapWriter adapts zap.Logger to logger.Writer interface
type zapWriter struct {
	logger *zap.Logger
}

func (w *zapWriter) Printf(format string, args ...interface{}) {
	w.logger.Sugar().Infof(format, args...)
}

// now is the clock used for created_at/updated_at. Feed cursors carry
// milliseconds, so stored timestamps must not be finer than that.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// DB wraps GORM database connection
type DB struct {
	*gorm.DB
}

// New creates a new database connection
func New(cfg *config.DatabaseConfig, logLevel string) (*DB, error) {
	var gormLogLevel logger.LogLevel
	switch logLevel {
	case "DEBUG", "debug":
		gormLogLevel = logger.Info
	case "INFO", "info":
		gormLogLevel = logger.Warn
	case "WARN", "warn", "WARNING", "warning":
		gormLogLevel = logger.Error
	case "ERROR", "error":
		gormLogLevel = logger.Silent
	default:
		gormLogLevel = logger.Warn
	}

	writer := &zapWriter{logger: logging.WithComponent("gorm")}
	gormLogger := logger.New(
		writer,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// Open database connection
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:  gormLogger,
		NowFunc: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.GetLogger().Info("Database connection established")

	d := &DB{DB: db}
	if cfg.AutoMigrate {
		if err := d.Migrate(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Migrate creates or updates the forum schema. Ledger tables get composite
// primary keys and cascading foreign keys from the model tags.
func (d *DB) Migrate() error {
	err := d.DB.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Reply{},
		&models.Updoot{},
		&models.ReplyVote{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database health
func (d *DB) Health(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

