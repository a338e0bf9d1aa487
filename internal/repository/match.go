package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"

	"gorm.io/gorm"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// GetByID loads a match with its phase. A missing match yields nil, nil.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).
		Preload("Phase").
		Where("id = ?", id).
		First(&match).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// ListFinished returns every FINISHED match that has both final scores.
func (r *MatchRepository) ListFinished(ctx context.Context) ([]models.Match, error) {
	var matches []models.Match
	err := r.finished(ctx).
		Order("scheduled_at ASC").
		Find(&matches).Error
	return matches, err
}

// ListUnsettledFinished returns finished matches never settled, or edited since their last settlement.
func (r *MatchRepository) ListUnsettledFinished(ctx context.Context) ([]models.Match, error) {
	var matches []models.Match
	err := r.finished(ctx).
		Where("settled_at IS NULL OR settled_at < updated_at").
		Order("scheduled_at ASC").
		Find(&matches).Error
	return matches, err
}

// MarkSettled stamps settled_at without touching updated_at.
func (r *MatchRepository) MarkSettled(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", id).
		UpdateColumn("settled_at", at).Error
}

func (r *MatchRepository) finished(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Phase").
		Where("status = ? AND home_score IS NOT NULL AND away_score IS NOT NULL AND home_score >= 0 AND away_score >= 0",
			models.MatchStatusFinished)
}
