package repository

import (
	"context"
	"time"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"

	"gorm.io/gorm"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Create(ctx context.Context, snapshot *models.LeaderboardSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// List returns snapshot metadata, newest first. Payloads are not loaded.
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]models.LeaderboardSnapshot, error) {
	var snapshots []models.LeaderboardSnapshot
	query := r.db.WithContext(ctx).
		Select("id", "entries", "archive_key", "created_at").
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&snapshots).Error
	return snapshots, err
}

func (r *SnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.LeaderboardSnapshot{})
	return result.RowsAffected, result.Error
}
