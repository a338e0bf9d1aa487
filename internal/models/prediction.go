package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prediction is unique per (user, match). PointsEarned and PointsBreakdown are written only by settlement.
type Prediction struct {
	ID                 string           `gorm:"primaryKey;size:36" json:"id"`
	UserID             string           `gorm:"size:36;not null;uniqueIndex:uk_user_match" json:"user_id"`
	MatchID            string           `gorm:"size:36;not null;uniqueIndex:uk_user_match;index" json:"match_id"`
	PredictedHomeScore int              `gorm:"not null" json:"predicted_home_score"`
	PredictedAwayScore int              `gorm:"not null" json:"predicted_away_score"`
	PointsEarned       int              `gorm:"not null;default:0" json:"points_earned"`
	PointsBreakdown    *PointsBreakdown `gorm:"type:json" json:"points_breakdown,omitempty"`
	SettledAt          *time.Time       `json:"settled_at,omitempty"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Prediction) TableName() string {
	return "predictions"
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Scoreline is a (home, away) goal pair.
type Scoreline struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// BreakdownCategories holds at most one populated field.
type BreakdownCategories struct {
	ExactScore                    *int `json:"exactScore,omitempty"`
	CorrectWinnerOrDraw           *int `json:"correctWinnerOrDraw,omitempty"`
	CorrectWinnerPlusOneTeamScore *int `json:"correctWinnerPlusOneTeamScore,omitempty"`
	CorrectOneTeamScore           *int `json:"correctOneTeamScore,omitempty"`
}

type BreakdownContext struct {
	Predicted Scoreline `json:"predicted"`
	Actual    Scoreline `json:"actual"`
	Phase     string    `json:"phase"`
}

// PointsBreakdown is the persisted record of how a prediction's points were produced.
type PointsBreakdown struct {
	Total      int                 `json:"total"`
	BasePoints int                 `json:"basePoints"`
	Multiplier float64             `json:"multiplier"`
	Breakdown  BreakdownCategories `json:"breakdown"`
	Context    BreakdownContext    `json:"context"`
}

func (b PointsBreakdown) Value() (driver.Value, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *PointsBreakdown) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*b = PointsBreakdown{}
		return nil
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	default:
		return fmt.Errorf("unsupported points_breakdown value type %T", value)
	}
}
