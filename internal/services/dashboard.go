package services

import (
	"time"

	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/lifecycle"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStatsRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type CategoryCount struct {
	CategoryID uint   `json:"category_id"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
}

type DashboardResponse struct {
	TotalComplaints  int64                      `json:"total_complaints"`
	TotalNews        int64                      `json:"total_news"`
	TotalUsers       int64                      `json:"total_users"`
	StatusCounts     map[lifecycle.Status]int64 `json:"status_counts"`
	CategoryCounts   []CategoryCount            `json:"category_counts"`
	RecentComplaints []models.Complaint         `json:"recent_complaints"`
}

// dateRange parses optional YYYY-MM-DD bounds. The end date is inclusive.
func (r *DashboardStatsRequest) dateRange() (start, end *time.Time) {
	if t, err := time.Parse("2006-01-02", r.StartDate); err == nil {
		start = &t
	}
	if t, err := time.Parse("2006-01-02", r.EndDate); err == nil {
		e := t.Add(24*time.Hour - time.Nanosecond)
		end = &e
	}
	return start, end
}

func (s *DashboardService) GetStats(req *DashboardStatsRequest) (*DashboardResponse, error) {
	start, end := req.dateRange()
	complaints := func() *gorm.DB {
		q := s.db.Model(&models.Complaint{})
		if start != nil {
			q = q.Where("complaints.created_at >= ?", *start)
		}
		if end != nil {
			q = q.Where("complaints.created_at <= ?", *end)
		}
		return q
	}

	resp := &DashboardResponse{
		StatusCounts:     make(map[lifecycle.Status]int64, 4),
		CategoryCounts:   []CategoryCount{},
		RecentComplaints: []models.Complaint{},
	}
	for _, st := range lifecycle.All() {
		resp.StatusCounts[st] = 0
	}

	if err := complaints().Count(&resp.TotalComplaints).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.News{}).Count(&resp.TotalNews).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&resp.TotalUsers).Error; err != nil {
		return nil, err
	}

	var byStatus []struct {
		Status lifecycle.Status
		Count  int64
	}
	if err := complaints().Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		resp.StatusCounts[row.Status] = row.Count
	}

	if err := complaints().
		Select("complaints.category_id AS category_id, complaint_categories.name AS name, COUNT(*) AS count").
		Joins("JOIN complaint_categories ON complaint_categories.id = complaints.category_id").
		Group("complaints.category_id, complaint_categories.name").
		Order("count DESC, category_id ASC").
		Scan(&resp.CategoryCounts).Error; err != nil {
		return nil, err
	}

	if err := complaints().Preload("Category").
		Order("created_at DESC, id DESC").Limit(3).
		Find(&resp.RecentComplaints).Error; err != nil {
		return nil, err
	}
	return resp, nil
}
