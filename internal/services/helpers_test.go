package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/internal/utils"
	"github.com/laporwarga/backend/pkg/lifecycle"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the schema and seed data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=0", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := models.Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	hashed, err := utils.HashPassword("rahasia123")
	if err != nil {
		t.Fatal(err)
	}
	user := &models.User{
		Email:      email,
		Name:       strings.Split(email, "@")[0],
		Phone:      "081234567890",
		Password:   hashed,
		Role:       role,
		AuthType:   "local",
		IsActive:   true,
		IsVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createComplaint(t *testing.T, db *gorm.DB, userID uint, number string, status lifecycle.Status) *models.Complaint {
	t.Helper()
	c := &models.Complaint{
		ComplaintNumber: number,
		CategoryID:      1,
		Title:           "Jalan Rusak Parah",
		Location:        "Jl. Merdeka No. 1",
		Description:     "Lubang besar di tengah jalan",
		Status:          status,
		UserID:          userID,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create complaint: %v", err)
	}
	return c
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.OTP.ResendCooldownSec = 60
	return cfg
}

// recordingQueue keeps enqueued tasks instead of running them.
type recordingQueue struct {
	mu    sync.Mutex
	types []string
	tasks []interface{}
}

func (q *recordingQueue) Enqueue(taskType string, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.types = append(q.types, taskType)
	q.tasks = append(q.tasks, payload)
	return nil
}

func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func (q *recordingQueue) lastOTP(t *testing.T) *OTPDeliveryTask {
	t.Helper()
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := len(q.tasks) - 1; i >= 0; i-- {
		if task, ok := q.tasks[i].(*OTPDeliveryTask); ok {
			return task
		}
	}
	t.Fatal("no OTP task enqueued")
	return nil
}

// stubModel answers with a fixed reply or error.
type stubModel struct {
	reply   string
	err     error
	calls   int
	lastMsg string
}

func (m *stubModel) Chat(ctx context.Context, system, message string) (string, error) {
	m.calls++
	m.lastMsg = message
	return m.reply, m.err
}
