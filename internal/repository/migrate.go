package repository

import (
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"

	"gorm.io/gorm"
)

// OwnedModels lists the tables auto-migration may create and alter. The users table is
// only read here; the account service migrates it.
func OwnedModels() []interface{} {
	return []interface{}{
		&models.Phase{},
		&models.Match{},
		&models.Prediction{},
		&models.LeaderboardEntry{},
		&models.AuditLog{},
		&models.LeaderboardSnapshot{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(OwnedModels()...)
}
