package models

import (
	"time"

	"gorm.io/gorm"
)

type NewsCategory struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

func (NewsCategory) TableName() string { return "news_categories" }

// News is an announcement published by an admin.
type News struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Title      string         `gorm:"size:100;not null" json:"title"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	CategoryID uint           `gorm:"index;not null" json:"category_id"`
	Category   *NewsCategory  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Date       time.Time      `gorm:"index" json:"date"`
	PhotoURL   string         `gorm:"size:500" json:"photo_url"`
	AdminID    uint           `gorm:"index" json:"admin_id"`
	Comments   []Comment      `gorm:"foreignKey:NewsID" json:"comments,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (News) TableName() string { return "news" }

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NewsID    uint      `gorm:"index;not null" json:"news_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }
