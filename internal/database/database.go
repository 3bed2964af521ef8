package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
	"gorm.io/plugin/opentelemetry/tracing"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if resolver := replicaResolver(cfg.DBReplicaDSNs); resolver != nil {
		if err := DB.Use(resolver); err != nil {
			return fmt.Errorf("failed to register read replicas: %w", err)
		}
		slog.Info("read replicas registered", "count", len(cfg.DBReplicaDSNs))
	}

	if err := DB.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return fmt.Errorf("failed to register tracing plugin: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// replicaResolver sends reads to the given replicas and writes (including
// everything inside a transaction) to the primary.
func replicaResolver(dsns []string) *dbresolver.DBResolver {
	if len(dsns) == 0 {
		return nil
	}
	replicas := make([]gorm.Dialector, 0, len(dsns))
	for _, dsn := range dsns {
		replicas = append(replicas, postgres.Open(dsn))
	}
	return dbresolver.Register(dbresolver.Config{
		Replicas:          replicas,
		Policy:            dbresolver.RandomPolicy{},
		TraceResolverMode: true,
	}).
		SetMaxOpenConns(25).
		SetConnMaxLifetime(30 * time.Minute)
}

// Migrate creates or updates the marketplace tables.
func Migrate() error {
	return DB.AutoMigrate(
		&models.User{},
		&models.Lawyer{},
		&models.Chat{},
		&models.ChatMessage{},
		&models.SystemLog{},
	)
}
