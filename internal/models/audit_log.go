package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditActionCalculateMatchPoints = "CALCULATE_MATCH_POINTS"

	AuditEntityMatch = "match"
)

type AuditLog struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	Action     string         `gorm:"size:64;not null;index:idx_audit_action_entity" json:"action"`
	EntityType string         `gorm:"size:32;not null" json:"entity_type"`
	EntityID   string         `gorm:"size:36;not null;index:idx_audit_action_entity" json:"entity_id"`
	Details    datatypes.JSON `gorm:"type:json;not null" json:"details"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
