package database

import (
	"fmt"
	"time"

	"agentgift-service/config"
	"agentgift-service/logger"
	"agentgift-service/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Error
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.UserProfile{},
		&models.RewardSetting{},
		&models.XPLog{},
		&models.CreditTransaction{},
		&models.FeatureUsage{},
		&models.BadgeEarnedLog{},
		&models.AdminActionLog{},
		&models.EmotionalSignature{},
		&models.FeatureBan{},
		&models.Announcement{},
		&models.ImpersonationSession{},
		&models.Nomination{},
		&models.RevealSession{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrations completed")
	return nil
}

// SeedRewardSettings inserts the default reward settings without touching rows an admin already tuned.
func SeedRewardSettings(db *gorm.DB) error {
	defaults := make([]models.RewardSetting, len(models.DefaultRewardSettings))
	copy(defaults, models.DefaultRewardSettings)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "feature_id"}},
		DoNothing: true,
	}).Create(&defaults)
	if result.Error != nil {
		return fmt.Errorf("failed to seed reward settings: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		logger.Info("Seeded reward settings", "count", result.RowsAffected)
	}
	return nil
}
