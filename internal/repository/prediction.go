package repository

import (
	"context"
	"time"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"

	"gorm.io/gorm"
)

type PredictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID string) ([]models.Prediction, error) {
	var predictions []models.Prediction
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC").
		Find(&predictions).Error
	return predictions, err
}

// UpdateResult overwrites the settlement outputs of one prediction.
func (r *PredictionRepository) UpdateResult(ctx context.Context, id string, points int, breakdown models.PointsBreakdown, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Prediction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"points_earned":    points,
			"points_breakdown": breakdown,
			"settled_at":       at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListScored returns every prediction joined with its match's status and final score.
func (r *PredictionRepository) ListScored(ctx context.Context) ([]models.ScoredPrediction, error) {
	var rows []models.ScoredPrediction
	err := r.db.WithContext(ctx).
		Table("predictions AS p").
		Select(`p.id AS prediction_id, p.user_id, p.match_id,
			p.predicted_home_score, p.predicted_away_score, p.points_earned,
			m.status AS match_status, m.home_score, m.away_score`).
		Joins("JOIN matches AS m ON m.id = p.match_id").
		Scan(&rows).Error
	return rows, err
}
