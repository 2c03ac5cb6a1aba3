package services

import (
	"encoding/json"
	"time"

	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/logger"
	"gorm.io/gorm"
)

var globalDB *gorm.DB

func InitSystemLogger(db *gorm.DB) {
	globalDB = db
}

// LogEntry carries the request context of an audited action.
type LogEntry struct {
	UserID     *uint
	IP         string
	UserAgent  string
	HTTPStatus int
	Extra      interface{}
}

func LogInfo(module, action, message string, entry LogEntry) {
	writeLog("info", module, action, message, entry)
}

func LogWarning(module, action, message string, entry LogEntry) {
	writeLog("warning", module, action, message, entry)
}

func LogError(module, action, message string, entry LogEntry) {
	writeLog("error", module, action, message, entry)
}

func writeLog(level, module, action, message string, entry LogEntry) {
	if globalDB == nil {
		return
	}

	var extraStr string
	if entry.Extra != nil {
		if b, err := json.Marshal(entry.Extra); err == nil {
			extraStr = string(b)
		}
	}

	row := &models.SystemLog{
		Level:      level,
		Module:     module,
		Action:     action,
		Message:    message,
		UserID:     entry.UserID,
		HTTPStatus: entry.HTTPStatus,
		IP:         entry.IP,
		UserAgent:  entry.UserAgent,
		Extra:      extraStr,
		CreatedAt:  time.Now(),
	}
	if err := globalDB.Create(row).Error; err != nil {
		logger.Warnf("[SystemLog] Failed to write %s/%s: %v", module, action, err)
	}
}

type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

type SystemLogListRequest struct {
	PageRequest
	Level     string `form:"level"`
	Module    string `form:"module"`
	Action    string `form:"action"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Search    string `form:"search"`
}

func (s *SystemLogService) List(req *SystemLogListRequest) (*ListResponse[models.SystemLog], error) {
	req.normalize()

	var logs []models.SystemLog
	var total int64

	query := s.db.Model(&models.SystemLog{})

	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.StartDate != "" {
		query = query.Where("created_at >= ?", req.StartDate)
	}
	if req.EndDate != "" {
		query = query.Where("created_at <= ?", req.EndDate+" 23:59:59")
	}
	if req.Search != "" {
		query = query.Where("message LIKE ?", "%"+req.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	if err := query.Offset(req.offset()).Limit(req.PageSize).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}

	return newList(logs, total, req.PageRequest), nil
}

func (s *SystemLogService) GetModules() ([]string, error) {
	var modules []string
	if err := s.db.Model(&models.SystemLog{}).Distinct("module").Order("module").Pluck("module", &modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

// CleanupOldLogs deletes logs older than retentionDays and returns the count.
func (s *SystemLogService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
