package service

import (
	"context"
	"sync"

	"github.com/lucidpath/wellness-api/internal/config"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	maintenanceService     *MaintenanceService
	maintenanceServiceOnce sync.Once
)

// MaintenanceService runs the background jobs: folding buffered view counts
// into the database, reconciling reply counters and pruning old read
// notifications.
type MaintenanceService struct {
	cron   *cron.Cron
	logger *zap.SugaredLogger
}

// NewMaintenanceService returns the maintenance service singleton.
func NewMaintenanceService() *MaintenanceService {
	maintenanceServiceOnce.Do(func() {
		maintenanceService = &MaintenanceService{
			cron:   cron.New(),
			logger: logger.GetSugaredLogger(),
		}
	})
	return maintenanceService
}

// Start registers the jobs and starts the scheduler.
func (s *MaintenanceService) Start() error {
	forum := NewForumService()
	notifications := NewNotificationService()

	// buffered redis view counts, every five minutes
	if _, err := s.cron.AddFunc("*/5 * * * *", func() {
		if err := forum.SyncViews(context.Background()); err != nil {
			s.logger.Warnf("sync thread views failed: %v", err)
		}
	}); err != nil {
		return err
	}

	// counter drift correction, nightly
	if _, err := s.cron.AddFunc("10 3 * * *", func() {
		if err := forum.ReconcilePostsCounts(); err != nil {
			s.logger.Warnf("reconcile posts counts failed: %v", err)
		}
	}); err != nil {
		return err
	}

	// read-notification retention, nightly
	if _, err := s.cron.AddFunc("30 3 * * *", func() {
		keepDays := 30
		if config.GlobalConfig != nil {
			keepDays = config.GlobalConfig.Forum.NotificationKeepDays
		}
		removed, err := notifications.CleanupRead(keepDays)
		if err != nil {
			s.logger.Warnf("cleanup notifications failed: %v", err)
			return
		}
		if removed > 0 {
			s.logger.Infof("removed %d read notifications", removed)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("maintenance jobs started")
	return nil
}

// Stop halts the scheduler, waiting for running jobs.
func (s *MaintenanceService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
