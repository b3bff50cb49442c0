package database

import (
	"fmt"
	"os"
	"time"

	"github.com/mompick/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Fallback to individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "mompick")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	gormLogger := logger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	return nil
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	err := DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create uuid-ossp extension: %v\n", err)
	}

	err = DB.AutoMigrate(
		&models.Profile{},
		&models.BlockedUser{},
		&models.Favorite{},
		&models.Review{},
		&models.ReviewImage{},
		&models.ReviewHelpful{},
		&models.ReviewDeleteRequest{},
		&models.Notification{},
		&models.NotificationSetting{},
		&models.FCMToken{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates performance and uniqueness indexes. The partial unique
// indexes carry the invariants the legacy client enforced with
// check-then-insert sequences, so concurrent submissions cannot slip through.
func createIndexes() error {
	// Profile lookups
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_profiles_email_lower ON profiles (LOWER(email))")

	// Review feed queries per facility
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reviews_facility_created ON reviews (facility_type, facility_code, created_at DESC) WHERE is_deleted = false")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reviews_facility_rating ON reviews (facility_type, facility_code, rating DESC) WHERE is_deleted = false")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reviews_facility_helpful ON reviews (facility_type, facility_code, helpful_count DESC) WHERE is_deleted = false")

	// One live review per (facility, author)
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_one_per_author ON reviews (facility_type, facility_code, profile_id) WHERE is_deleted = false")

	// One helpful mark per (review, user)
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_review_helpful_unique ON review_helpful (review_id, profile_id)")

	// One pending delete request per (review, requester)
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_delete_requests_pending ON review_delete_requests (review_id, requester_id) WHERE status = 'pending'")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_delete_requests_status ON review_delete_requests (status, created_at DESC)")

	// Notification center queries
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_to_created ON notifications (to_profile_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_match ON notifications (review_id, from_profile_id, to_profile_id)")

	// One block per user pair
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_blocked_users_unique ON blocked_users (blocker_id, blocked_id)")

	// One favorite per (user, target)
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_favorites_unique ON favorites (profile_id, target_type, target_id)")

	// Token reconciliation lookups; device rows with NULL device ids are
	// matched per user, so the unique pair index is partial
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_fcm_tokens_profile_device ON fcm_tokens (profile_id, device_id) WHERE device_id IS NOT NULL")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
