package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/config"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/errors"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/logger"
)

type RecoveryService struct {
	leaderboardStore LeaderboardStore
	snapshotStore    SnapshotStore
	// archiver is nil when snapshots stay in the database only.
	archiver  Archiver
	keyPrefix string
	now       func() time.Time
}

func NewRecoveryService(
	leaderboardStore LeaderboardStore,
	snapshotStore SnapshotStore,
	archiver Archiver,
	cfg *config.BackupConfig,
) *RecoveryService {
	return &RecoveryService{
		leaderboardStore: leaderboardStore,
		snapshotStore:    snapshotStore,
		archiver:         archiver,
		keyPrefix:        strings.Trim(cfg.KeyPrefix, "/"),
		now:              time.Now,
	}
}

// BackupLeaderboard stores the current leaderboard as a snapshot row and, when an archiver
// is configured, uploads the same JSON. A failed upload fails the backup before the row is written.
func (s *RecoveryService) BackupLeaderboard(ctx context.Context) (*models.LeaderboardSnapshot, error) {
	entries, err := s.leaderboardStore.GetAll(ctx)
	if err != nil {
		return nil, errors.New(errors.ErrBackup, "failed to read leaderboard", err)
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return nil, errors.New(errors.ErrBackup, "failed to encode leaderboard", err)
	}

	snapshot := &models.LeaderboardSnapshot{
		Entries: len(entries),
		Payload: datatypes.JSON(payload),
	}

	if s.archiver != nil {
		key := s.archiveKey(s.now())
		if err := s.archiver.Put(ctx, key, payload, "application/json"); err != nil {
			return nil, errors.New(errors.ErrBackup, "failed to upload snapshot "+key, err)
		}
		snapshot.ArchiveKey = key
	}

	if err := s.snapshotStore.Create(ctx, snapshot); err != nil {
		return nil, errors.New(errors.ErrBackup, "failed to save snapshot", err)
	}

	logger.WithFields(map[string]interface{}{
		"snapshot_id": snapshot.ID,
		"entries":     snapshot.Entries,
		"archive_key": snapshot.ArchiveKey,
	}).Info("Leaderboard snapshot created")

	return snapshot, nil
}

func (s *RecoveryService) archiveKey(at time.Time) string {
	name := fmt.Sprintf("leaderboard-%s.json", at.UTC().Format("20060102T150405Z"))
	if s.keyPrefix == "" {
		return name
	}
	return s.keyPrefix + "/" + name
}

func (s *RecoveryService) ListSnapshots(ctx context.Context, limit int) ([]models.LeaderboardSnapshot, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	snapshots, err := s.snapshotStore.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if snapshots == nil {
		snapshots = []models.LeaderboardSnapshot{}
	}
	return snapshots, nil
}

// PruneSnapshots deletes snapshot rows older than retentionDays. Archived copies are left alone.
// A non-positive retention keeps everything.
func (s *RecoveryService) PruneSnapshots(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted, err := s.snapshotStore.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, errors.New(errors.ErrBackup, "failed to prune snapshots", err)
	}
	if deleted > 0 {
		logger.WithFields(map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff,
		}).Info("Old leaderboard snapshots pruned")
	}
	return deleted, nil
}
