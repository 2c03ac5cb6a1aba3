package services

import (
	"context"
	"testing"
	"time"

	"github.com/laporwarga/backend/internal/models"
)

func TestMaintenanceService_RunOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewMaintenanceService(db)
	ctx := context.Background()
	now := time.Now()

	db.Create(&models.OTPCode{Email: "a@example.com", CodeHash: "x", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)})
	db.Create(&models.OTPCode{Email: "b@example.com", CodeHash: "y", ExpiresAt: now.Add(time.Hour), CreatedAt: now})
	revokedAt := now.AddDate(0, 0, -10)
	db.Create(&models.RefreshToken{UserID: 1, TokenHash: "old", ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt})
	db.Create(&models.RefreshToken{UserID: 1, TokenHash: "expired", ExpiresAt: now.Add(-time.Hour)})
	db.Create(&models.RefreshToken{UserID: 1, TokenHash: "live", ExpiresAt: now.Add(time.Hour)})
	db.Create(&models.SystemLog{Level: "info", Module: "auth", Action: "login", CreatedAt: now.AddDate(0, 0, -60)})
	db.Create(&models.SystemLog{Level: "info", Module: "auth", Action: "login", CreatedAt: now})

	report, err := svc.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if report == nil {
		t.Fatal("first run should hold the lock")
	}
	if report.OTPCodes != 1 || report.RefreshTokens != 2 || report.SystemLogs != 1 {
		t.Errorf("report = %+v", report)
	}

	var live int64
	db.Model(&models.RefreshToken{}).Count(&live)
	if live != 1 {
		t.Errorf("refresh tokens left = %d, expected 1", live)
	}

	again, err := svc.RunOnce(ctx)
	if err != nil {
		t.Fatalf("second RunOnce() error = %v", err)
	}
	if again != nil {
		t.Error("second run on the same day should be skipped")
	}
}

func TestMaintenanceService_NextDayRunsAgain(t *testing.T) {
	db := newTestDB(t)
	svc := NewMaintenanceService(db)
	ctx := context.Background()

	day := time.Date(2024, 5, 1, 3, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return day }
	if report, _ := svc.RunOnce(ctx); report == nil {
		t.Fatal("first run should hold the lock")
	}

	svc.now = func() time.Time { return day.AddDate(0, 0, 1) }
	if report, _ := svc.RunOnce(ctx); report == nil {
		t.Error("next day should run again")
	}
}

func TestMaintenanceService_Scheduler(t *testing.T) {
	svc := NewMaintenanceService(newTestDB(t))
	if err := svc.StartScheduler(); err != nil {
		t.Fatalf("StartScheduler() error = %v", err)
	}
	svc.StopScheduler()
	svc.StopScheduler()

	if err := svc.configSvc.Set("maintenance_cron", "not a cron"); err != nil {
		t.Fatal(err)
	}
	if err := svc.StartScheduler(); err == nil {
		svc.StopScheduler()
		t.Error("invalid cron expression should fail")
	}
}
