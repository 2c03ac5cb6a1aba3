package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const maintenanceLock = "maintenance"

// MaintenanceReport counts rows removed by one run.
type MaintenanceReport struct {
	OTPCodes      int64 `json:"otp_codes"`
	RefreshTokens int64 `json:"refresh_tokens"`
	SystemLogs    int64 `json:"system_logs"`
	Locks         int64 `json:"locks"`
}

// MaintenanceService purges expired credentials and old audit logs on a cron schedule.
type MaintenanceService struct {
	db        *gorm.DB
	configSvc *SystemConfigService
	logSvc    *SystemLogService
	otp       *DBOTPStore
	instance  string
	now       func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	host, _ := os.Hostname()
	return &MaintenanceService{
		db:        db,
		configSvc: NewSystemConfigService(db),
		logSvc:    NewSystemLogService(db),
		otp:       NewDBOTPStore(db),
		instance:  host,
		now:       time.Now,
	}
}

func (s *MaintenanceService) StartScheduler() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expr := s.configSvc.GetWithDefault("maintenance_cron", "0 3 * * *")
	s.cron = cron.New()
	entryID, err := s.cron.AddFunc(expr, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			logger.Errorf("[Maintenance] Run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.entryID = entryID
	s.cron.Start()
	logger.Infof("[Maintenance] Scheduler started (cron: %s)", expr)
	return nil
}

func (s *MaintenanceService) StopScheduler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
}

// RunOnce purges at most once per day across replicas. The report is nil when
// another instance already holds today's lock.
func (s *MaintenanceService) RunOnce(ctx context.Context) (report *MaintenanceReport, err error) {
	ok, err := s.acquire(ctx)
	if err != nil || !ok {
		return nil, err
	}

	report = &MaintenanceReport{}
	now := s.now()

	if report.OTPCodes, err = s.otp.PurgeExpired(ctx); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", now, now.AddDate(0, 0, -7)).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return nil, result.Error
	}
	report.RefreshTokens = result.RowsAffected

	if report.SystemLogs, err = s.logSvc.CleanupOldLogs(s.configSvc.GetInt("log_retention_days", 30)); err != nil {
		return nil, err
	}

	result = s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.SchedulerLock{})
	if result.Error != nil {
		return nil, result.Error
	}
	report.Locks = result.RowsAffected

	logger.Info().
		Int64("otp_codes", report.OTPCodes).
		Int64("refresh_tokens", report.RefreshTokens).
		Int64("system_logs", report.SystemLogs).
		Msg("[Maintenance] Purge complete")
	return report, nil
}

func (s *MaintenanceService) acquire(ctx context.Context) (bool, error) {
	now := s.now()
	lock := models.SchedulerLock{
		LockName:  maintenanceLock,
		LockKey:   now.Format("2006-01-02"),
		LockedBy:  s.instance,
		LockedAt:  now,
		ExpiresAt: now.Add(48 * time.Hour),
	}
	err := s.db.WithContext(ctx).Create(&lock).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		logger.Debug().Str("key", lock.LockKey).Msg("[Maintenance] Already ran today")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
