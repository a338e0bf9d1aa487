package repository

import (
	"context"
	"errors"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 200

type LeaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// GetAll returns every cached row ordered by ranking.
func (r *LeaderboardRepository) GetAll(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Order("ranking ASC").
		Find(&entries).Error
	return entries, err
}

// UpsertAll makes entries the whole leaderboard in one transaction: rows are upserted on user_id
// and rows of users missing from entries are deleted.
func (r *LeaderboardRepository) UpsertAll(ctx context.Context, entries []models.LeaderboardEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(entries) == 0 {
			return tx.Where("1 = 1").Delete(&models.LeaderboardEntry{}).Error
		}

		userIDs := make([]string, 0, len(entries))
		for _, e := range entries {
			userIDs = append(userIDs, e.UserID)
		}
		if err := tx.Where("user_id NOT IN ?", userIDs).Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_points",
				"total_predictions",
				"correct_predictions",
				"exact_scores",
				"accuracy_rate",
				"ranking",
				"previous_ranking",
				"ranking_change",
				"updated_at",
			}),
		}).CreateInBatches(&entries, upsertBatchSize).Error
	})
}

// List returns one page of the leaderboard with usernames, ordered by ranking.
func (r *LeaderboardRepository) List(ctx context.Context, offset, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("leaderboard_entries AS le").
		Select("le.*, u.username").
		Joins("LEFT JOIN users AS u ON u.id = le.user_id").
		Order("le.ranking ASC").
		Offset(offset).
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

func (r *LeaderboardRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LeaderboardEntry{}).
		Count(&count).Error
	return count, err
}

// GetByUser returns nil, nil when the user has no leaderboard row yet.
func (r *LeaderboardRepository) GetByUser(ctx context.Context, userID string) (*models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Table("leaderboard_entries AS le").
		Select("le.*, u.username").
		Joins("LEFT JOIN users AS u ON u.id = le.user_id").
		Where("le.user_id = ?", userID).
		Take(&entry).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
