package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lolinsolito-lab/VoxLux-sub002/internal/config"
	"github.com/lolinsolito-lab/VoxLux-sub002/internal/models"
	"github.com/lolinsolito-lab/VoxLux-sub002/pkg/logging"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Init opens the database connection, runs migrations and seeds the default
// bonus catalog. The handle is returned to the caller and injected where
// needed; no package-level connection is kept.
func Init(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	}

	if cfg.DatabaseURL == "" {
		// Fallback to SQLite for development
		logging.Infof("Database URL not set, using SQLite for development")
		db, err = gorm.Open(sqlite.Open("voxlux.db"), gormCfg)
	} else {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := seedBonusCatalog(db); err != nil {
		return nil, fmt.Errorf("failed to seed bonus catalog: %w", err)
	}

	logging.Infof("Database connected successfully")
	return db, nil
}

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Purchase{},
		&models.BonusProduct{},
		&models.BonusGrant{},
		&models.PromoCode{},
		&models.SupportTicket{},
		&models.SupportMessage{},
		&models.AnalyticsEvent{},
	)
}

// seedBonusCatalog inserts the launch bonus catalog. FirstOrCreate keeps
// restarts duplicate-safe.
func seedBonusCatalog(db *gorm.DB) error {
	defaults := []models.BonusProduct{
		{
			Title:           "Guide de démarrage Matrice",
			Description:     "PDF workbook covering the first week of the course",
			DeliveryType:    models.BonusDeliveryDownload,
			ApplicableTiers: "matrice-1,matrice-2",
			Active:          true,
		},
		{
			Title:           "Session de groupe mensuelle",
			Description:     "Access to the monthly live group call",
			DeliveryType:    models.BonusDeliveryUnlock,
			ApplicableTiers: "matrice-2",
			Active:          true,
		},
	}

	for i := range defaults {
		result := db.Where("title = ?", defaults[i].Title).FirstOrCreate(&defaults[i])
		if result.Error != nil {
			return fmt.Errorf("failed to seed bonus %q: %w", defaults[i].Title, result.Error)
		}
	}
	return nil
}

// InitRedis connects to redis. The replay guard degrades to DB-constraint
// idempotency when redis is unavailable, so a failure here is not fatal.
func InitRedis(cfg *config.Config) *redis.Client {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logging.Warnf("Failed to parse Redis URL, replay guard disabled: %v", err)
		return nil
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warnf("Failed to connect to Redis, replay guard disabled: %v", err)
		return nil
	}

	logging.Infof("Redis connected successfully")
	return client
}

// Store wraps the database handle with the query methods used by the
// services. Constructed once in main and injected everywhere.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over an open database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}
