package models

import (
	"time"

	"github.com/laporwarga/backend/pkg/lifecycle"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ComplaintCategory is one of the fixed complaint categories seeded at startup.
type ComplaintCategory struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

func (ComplaintCategory) TableName() string { return "complaint_categories" }

type Complaint struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	ComplaintNumber string                      `gorm:"uniqueIndex;size:20;not null" json:"complaint_number"`
	CategoryID      uint                        `gorm:"index;not null" json:"category_id"`
	Category        *ComplaintCategory          `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Title           string                      `gorm:"size:150;not null" json:"title"`
	Location        string                      `gorm:"size:255;not null" json:"location"`
	Description     string                      `gorm:"type:text;not null" json:"description"`
	PhotoURLs       datatypes.JSONSlice[string] `json:"photo_urls"`
	Status          lifecycle.Status            `gorm:"size:20;default:proses;index" json:"status"`
	CancelReason    string                      `gorm:"size:500" json:"cancel_reason,omitempty"`
	UserID          uint                        `gorm:"index;not null" json:"user_id"`
	User            *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Feedbacks       []Feedback                  `gorm:"foreignKey:ComplaintID" json:"feedbacks"`
	CreatedAt       time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	DeletedAt       gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (Complaint) TableName() string { return "complaints" }

// Feedback is an officer's response to a complaint.
type Feedback struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"index;not null" json:"complaint_id"`
	AdminID     uint      `gorm:"index" json:"admin_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Feedback) TableName() string { return "feedbacks" }
