package services

import (
	"time"

	"github.com/prompthive/prompthive/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CleanupService runs nightly housekeeping: purging stale usage counter
// rows (the UTC day has rolled over, so old rows are dead weight) and
// expiring audit logs past retention.
type CleanupService struct {
	db            *gorm.DB
	auditSvc      *AuditLogService
	retentionDays int
	scheduler     *cron.Cron
}

func NewCleanupService(db *gorm.DB, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &CleanupService{
		db:            db,
		auditSvc:      NewAuditLogService(db),
		retentionDays: retentionDays,
	}
}

// StartScheduler schedules the cleanup shortly after UTC midnight.
func (s *CleanupService) StartScheduler() {
	s.scheduler = cron.New(cron.WithLocation(time.UTC))

	if _, err := s.scheduler.AddFunc("10 0 * * *", s.Run); err != nil {
		logger.Errorf("[Cleanup] failed to schedule job: %v", err)
		return
	}

	s.scheduler.Start()
	logger.Infof("[Cleanup] scheduler started (00:10 UTC daily)")
}

func (s *CleanupService) StopScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Run executes one cleanup pass.
func (s *CleanupService) Run() {
	today := time.Now().UTC().Format("2006-01-02")

	tracker := NewDBUsageTracker(s.db)
	if purged, err := tracker.PurgeBefore(today); err != nil {
		logger.Errorf("[Cleanup] usage counter purge failed: %v", err)
	} else if purged > 0 {
		logger.Infof("[Cleanup] purged %d stale usage counters", purged)
	}

	if removed, err := s.auditSvc.Cleanup(s.retentionDays); err != nil {
		logger.Errorf("[Cleanup] audit log cleanup failed: %v", err)
	} else if removed > 0 {
		logger.Infof("[Cleanup] removed %d expired audit logs", removed)
	}
}
