package database

import (
	"fmt"
	"log/slog"

	"trove/internal/config"
	"trove/internal/middleware"
	"trove/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Item{},
		&models.Claim{},
		&models.Notification{},
	}
}

// activeClaimIndexSQL enforces at most one active (pending or forwarded)
// claim per (claimant, item) pair at the storage level. Partial indexes are
// Postgres-only; other dialects rely on the check-then-insert transaction in
// the claim service.
const activeClaimIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_one_active_per_user_item
ON claims (user_id, item_id)
WHERE status IN ('pending', 'forwarded_to_admin') AND deleted_at IS NULL
`

// Migrate applies the schema for all persistent models and the claim
// uniqueness index. AutoMigrate is additive only, so it is safe to run in
// every environment this application targets.
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(activeClaimIndexSQL).Error; err != nil {
			return fmt.Errorf("failed to create active-claim uniqueness index: %w", err)
		}
	}

	env := "development"
	if cfg != nil && cfg.Env != "" {
		env = cfg.Env
	}
	middleware.Logger.Info("Database migration completed", slog.String("env", env))
	return nil
}
