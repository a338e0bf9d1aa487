package models

import (
	"time"
)

// LeaderboardEntry is the materialized per-user standing. Only the leaderboard aggregator writes it.
type LeaderboardEntry struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID             string    `gorm:"uniqueIndex:uk_leaderboard_user;size:36;not null" json:"user_id"`
	Username           string    `gorm:"->;-:migration" json:"username,omitempty"`
	TotalPoints        int       `gorm:"not null;default:0" json:"total_points"`
	TotalPredictions   int       `gorm:"not null;default:0" json:"total_predictions"`
	CorrectPredictions int       `gorm:"not null;default:0" json:"correct_predictions"`
	ExactScores        int       `gorm:"not null;default:0" json:"exact_scores"`
	AccuracyRate       string    `gorm:"size:8;not null;default:'0.00'" json:"accuracy_rate"`
	Ranking            int       `gorm:"not null;index" json:"ranking"`
	PreviousRanking    *int      `json:"previous_ranking"`
	RankingChange      int       `gorm:"not null;default:0" json:"ranking_change"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}
