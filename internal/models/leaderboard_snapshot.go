package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LeaderboardSnapshot is a point-in-time copy of the whole leaderboard.
type LeaderboardSnapshot struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	Entries    int            `gorm:"not null" json:"entries"`
	Payload    datatypes.JSON `gorm:"type:json;not null" json:"-"`
	ArchiveKey string         `gorm:"size:255" json:"archive_key,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (LeaderboardSnapshot) TableName() string {
	return "leaderboard_snapshots"
}

func (s *LeaderboardSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
