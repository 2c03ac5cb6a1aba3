package client

import (
	"time"

	"github.com/laporwarga/backend/pkg/lifecycle"
	"github.com/laporwarga/backend/pkg/validation"
)

// Page is one page of a listing.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID         uint       `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	PhotoURL   string     `json:"photo_url"`
	Role       string     `json:"role"`
	AuthType   string     `json:"auth_type"`
	IsActive   bool       `json:"is_active"`
	IsVerified bool       `json:"is_verified"`
	LastLogin  *time.Time `json:"last_login"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Session struct {
	AccessToken     string    `json:"access_token"`
	AccessExpireAt  time.Time `json:"access_expire_at"`
	RefreshToken    string    `json:"refresh_token"`
	RefreshExpireAt time.Time `json:"refresh_expire_at"`
	User            *User     `json:"user"`
}

type Feedback struct {
	ID          uint      `json:"id"`
	ComplaintID uint      `json:"complaint_id"`
	AdminID     uint      `json:"admin_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Complaint struct {
	ID              uint             `json:"id"`
	ComplaintNumber string           `json:"complaint_number"`
	CategoryID      uint             `json:"category_id"`
	Category        *Category        `json:"category,omitempty"`
	Title           string           `json:"title"`
	Location        string           `json:"location"`
	Description     string           `json:"description"`
	PhotoURLs       []string         `json:"photo_urls"`
	Status          lifecycle.Status `json:"status"`
	CancelReason    string           `json:"cancel_reason,omitempty"`
	UserID          uint             `json:"user_id"`
	User            *User            `json:"user,omitempty"`
	Feedbacks       []Feedback       `json:"feedbacks"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// FeedbackRefs adapts the feedback list for lifecycle.ViewFor.
func (c *Complaint) FeedbackRefs() []lifecycle.FeedbackRef {
	refs := make([]lifecycle.FeedbackRef, len(c.Feedbacks))
	for i, f := range c.Feedbacks {
		refs[i] = lifecycle.FeedbackRef{ID: f.ID, Content: f.Content}
	}
	return refs
}

type CreateComplaintRequest struct {
	validation.ComplaintForm
	ComplaintNumber string   `json:"complaint_number"`
	PhotoURLs       []string `json:"photo_urls"`
}

type ComplaintFilter struct {
	ListOptions
	CategoryID uint
	Status     lifecycle.Status
	Search     string
}

type News struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID uint      `json:"category_id"`
	Category   *Category `json:"category,omitempty"`
	Date       time.Time `json:"date"`
	PhotoURL   string    `json:"photo_url"`
	AdminID    uint      `json:"admin_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type NewsFilter struct {
	ListOptions
	CategoryID uint
	Search     string
}

type Comment struct {
	ID        uint      `json:"id"`
	NewsID    uint      `json:"news_id"`
	UserID    uint      `json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type UserFilter struct {
	ListOptions
	Search string
	Role   string
}

type UpdateUserRequest struct {
	validation.UserEditForm
	IsActive *bool `json:"is_active,omitempty"`
}

type ChatTopic struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type ChatbotRequest struct {
	Message string `json:"message,omitempty"`
	Topic   string `json:"topic,omitempty"`
}

type ChatbotResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Topic     string    `json:"topic,omitempty"`
	Request   string    `json:"request"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatbotSuggestion struct {
	ID          uint      `json:"id"`
	ComplaintID uint      `json:"complaint_id"`
	AdminID     uint      `json:"admin_id"`
	Message     string    `json:"message"`
	Response    string    `json:"response"`
	CreatedAt   time.Time `json:"created_at"`
}

type ChatbotHistory struct {
	ID          uint      `json:"id"`
	ComplaintID uint      `json:"complaint_id"`
	Sender      string    `json:"sender"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

type CategoryCount struct {
	CategoryID uint   `json:"category_id"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
}

type DashboardStats struct {
	TotalComplaints  int64                      `json:"total_complaints"`
	TotalNews        int64                      `json:"total_news"`
	TotalUsers       int64                      `json:"total_users"`
	StatusCounts     map[lifecycle.Status]int64 `json:"status_counts"`
	CategoryCounts   []CategoryCount            `json:"category_counts"`
	RecentComplaints []Complaint                `json:"recent_complaints"`
}
