package models

import (
	"github.com/shopspring/decimal"
)

// Phase is tournament-stage reference data. Every phase currently carries a multiplier of 1.
type Phase struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	Name             string          `gorm:"size:64;not null" json:"name"`
	Slug             string          `gorm:"size:64;not null;uniqueIndex" json:"slug"`
	PointsMultiplier decimal.Decimal `gorm:"type:decimal(6,3);not null;default:1" json:"points_multiplier"`
}

func (Phase) TableName() string {
	return "phases"
}
