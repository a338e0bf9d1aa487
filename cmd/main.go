package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/archive"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/config"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/handler"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/repository"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/scheduler"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/internal/service"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/errors"
	"github.com/Manuelsilva-94/prode-mundial-2026-sub000/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := initDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer closeDatabase(db)

	matchRepo := repository.NewMatchRepository(db)
	predictionRepo := repository.NewPredictionRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var archiver service.Archiver
	if cfg.Backup.ArchiveEnabled() {
		s3Archiver, err := archive.NewS3Archiver(ctx, &cfg.Backup)
		if err != nil {
			logger.Fatal("Failed to init snapshot archive:", err)
		}
		archiver = s3Archiver
	}

	leaderboardSvc := service.NewLeaderboardService(predictionRepo, userRepo, leaderboardRepo)
	settlementSvc := service.NewSettlementService(matchRepo, predictionRepo, auditRepo, leaderboardSvc, &cfg.Scoring)
	recoverySvc := service.NewRecoveryService(leaderboardRepo, snapshotRepo, archiver, &cfg.Backup)

	if cfg.Scheduler.Enabled {
		settlementScheduler := scheduler.NewSettlementScheduler(settlementSvc, leaderboardSvc, recoverySvc, cfg.Scheduler, cfg.Backup)
		if err := settlementScheduler.Start(); err != nil {
			logger.Fatal("Failed to start scheduler:", err)
		}
		defer settlementScheduler.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.NewRouter(settlementSvc, leaderboardSvc, recoverySvc),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting on port ", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error:", err)
	}

	logger.Info("Server stopped")
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	default:
		dialector = mysql.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, errors.New(errors.ErrDatabaseConnect, "failed to open "+cfg.Driver+" database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if cfg.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			return nil, errors.New(errors.ErrDatabaseConnect, "failed to migrate schema", err)
		}
	}

	return db, nil
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get database instance:", err)
		return
	}
	sqlDB.Close()
}
