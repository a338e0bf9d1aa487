package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/config"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/models"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/service"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/logger"
)

type Settler interface {
	SettleUnsettledMatches(ctx context.Context) (service.BatchResult, error)
}

type Backupper interface {
	BackupLeaderboard(ctx context.Context) (*models.LeaderboardSnapshot, error)
	PruneSnapshots(ctx context.Context, retentionDays int) (int64, error)
}

type SettlementScheduler struct {
	cron          *cron.Cron
	settler       Settler
	aggregator    service.Aggregator
	backups       Backupper
	cfg           config.SchedulerConfig
	backupEnabled bool
	retentionDays int
}

// NewSettlementScheduler builds the cron jobs. backups may be nil to disable the backup job.
func NewSettlementScheduler(
	settler Settler,
	aggregator service.Aggregator,
	backups Backupper,
	cfg config.SchedulerConfig,
	backupCfg config.BackupConfig,
) *SettlementScheduler {
	cronLogger := cron.PrintfLogger(logger.Log)
	return &SettlementScheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		settler:       settler,
		aggregator:    aggregator,
		backups:       backups,
		cfg:           cfg,
		backupEnabled: backups != nil && backupCfg.Enabled,
		retentionDays: backupCfg.RetentionDays,
	}
}

func (s *SettlementScheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func()
		on   bool
	}{
		{name: "auto-settle", spec: s.cfg.AutoSettleCron, run: s.autoSettle, on: true},
		{name: "recompute", spec: s.cfg.RecomputeCron, run: s.recompute, on: true},
		{name: "backup", spec: s.cfg.BackupCron, run: s.backup, on: s.backupEnabled},
	}

	for _, job := range jobs {
		if !job.on || job.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("invalid %s schedule %q: %w", job.name, job.spec, err)
		}
		logger.WithFields(map[string]interface{}{
			"job":      job.name,
			"schedule": job.spec,
		}).Info("Scheduled job registered")
	}

	s.cron.Start()
	logger.Info("Settlement scheduler started")
	return nil
}

func (s *SettlementScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Settlement scheduler stopped")
}

func (s *SettlementScheduler) autoSettle() {
	result, err := s.settler.SettleUnsettledMatches(context.Background())
	if err != nil {
		logger.WithError(err).Error("Auto-settle job failed")
		return
	}
	if result.Processed > 0 || result.Errors > 0 {
		logger.WithFields(map[string]interface{}{
			"processed": result.Processed,
			"errors":    result.Errors,
		}).Info("Auto-settle job completed")
	}
}

func (s *SettlementScheduler) recompute() {
	if err := s.aggregator.Recompute(context.Background()); err != nil {
		logger.WithError(err).Error("Leaderboard recompute job failed")
	}
}

func (s *SettlementScheduler) backup() {
	ctx := context.Background()
	if _, err := s.backups.BackupLeaderboard(ctx); err != nil {
		logger.WithError(err).Error("Leaderboard backup job failed")
	}
	if _, err := s.backups.PruneSnapshots(ctx, s.retentionDays); err != nil {
		logger.WithError(err).Error("Snapshot prune failed")
	}
}
