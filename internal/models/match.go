package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusFinished  MatchStatus = "FINISHED"
	MatchStatusPostponed MatchStatus = "POSTPONED"
)

// Match is owned by the admin result-entry flow; settlement only reads it and stamps SettledAt.
type Match struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	HomeTeam    string      `gorm:"size:100;not null" json:"home_team"`
	AwayTeam    string      `gorm:"size:100;not null" json:"away_team"`
	PhaseID     string      `gorm:"size:36;index" json:"phase_id"`
	Phase       *Phase      `gorm:"foreignKey:PhaseID" json:"phase,omitempty"`
	ScheduledAt time.Time   `gorm:"not null" json:"scheduled_at"`
	LockTime    time.Time   `gorm:"not null" json:"lock_time"`
	Status      MatchStatus `gorm:"size:16;not null;default:SCHEDULED;index" json:"status"`
	HomeScore   *int        `json:"home_score"`
	AwayScore   *int        `json:"away_score"`
	SettledAt   *time.Time  `json:"settled_at"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Match) TableName() string {
	return "matches"
}

// HasFinalScore reports whether both scores are present and non-negative.
func (m *Match) HasFinalScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil && *m.HomeScore >= 0 && *m.AwayScore >= 0
}

// Multiplier returns the phase multiplier, or fallback when the phase is unknown or misconfigured.
func (m *Match) Multiplier(fallback decimal.Decimal) decimal.Decimal {
	if m.Phase != nil && m.Phase.PointsMultiplier.IsPositive() {
		return m.Phase.PointsMultiplier
	}
	return fallback
}

func (m *Match) PhaseSlug() string {
	if m.Phase == nil {
		return ""
	}
	return m.Phase.Slug
}
