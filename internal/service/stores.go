package service

import (
	"context"
	"time"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"
)

// The interfaces below are the only view of persistence the services have;
// the gorm repositories satisfy them.

type MatchStore interface {
	GetByID(ctx context.Context, id string) (*models.Match, error)
	ListFinished(ctx context.Context) ([]models.Match, error)
	ListUnsettledFinished(ctx context.Context) ([]models.Match, error)
	MarkSettled(ctx context.Context, id string, at time.Time) error
}

type PredictionStore interface {
	ListByMatch(ctx context.Context, matchID string) ([]models.Prediction, error)
	UpdateResult(ctx context.Context, id string, points int, breakdown models.PointsBreakdown, at time.Time) error
	ListScored(ctx context.Context) ([]models.ScoredPrediction, error)
}

type LeaderboardStore interface {
	GetAll(ctx context.Context) ([]models.LeaderboardEntry, error)
	// UpsertAll replaces the stored leaderboard with entries, dropping rows of users not in it.
	UpsertAll(ctx context.Context, entries []models.LeaderboardEntry) error
	List(ctx context.Context, offset, limit int) ([]models.LeaderboardEntry, error)
	Count(ctx context.Context) (int64, error)
	GetByUser(ctx context.Context, userID string) (*models.LeaderboardEntry, error)
}

type UserStore interface {
	ListAll(ctx context.Context) ([]models.User, error)
}

type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

type SnapshotStore interface {
	Create(ctx context.Context, snapshot *models.LeaderboardSnapshot) error
	List(ctx context.Context, limit int) ([]models.LeaderboardSnapshot, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Archiver copies snapshot payloads to external storage.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}
