package validation

import (
	"strings"
	"time"
)

type ComplaintForm struct {
	CategoryID  uint   `json:"category_id" form:"category_id" binding:"required,min=1"`
	Title       string `json:"title" form:"title" binding:"required,min=5,max=150"`
	Location    string `json:"location" form:"location" binding:"required,nonblank,max=255"`
	Description string `json:"description" form:"description" binding:"required,min=10"`
}

type NewsForm struct {
	Title      string    `json:"title" form:"title" binding:"required,min=5,max=100"`
	Content    string    `json:"content" form:"content" binding:"required,min=20,max=500"`
	CategoryID uint      `json:"category_id" form:"category_id" binding:"required,min=1"`
	Date       time.Time `json:"date" form:"date" time_format:"2006-01-02" binding:"required,notfuture"`
}

type FeedbackForm struct {
	Content string `json:"content" binding:"required,min=10,max=2000"`
}

type CommentForm struct {
	Content string `json:"content" binding:"required,nonblank,max=1000"`
}

type UserEditForm struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,numeric,min=10,max=15"`
	Role  string `json:"role" binding:"required,oneof=admin user"`
}

type ProfileForm struct {
	Name  string `json:"name" form:"name" binding:"required,max=100"`
	Phone string `json:"phone" form:"phone" binding:"omitempty,numeric,min=10,max=15"`
}

type PasswordChangeForm struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type RegisterForm struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required,numeric,min=10,max=15"`
	Password string `json:"password" binding:"required,min=8"`
}

type OTPForm struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,numeric,len=6"`
}

// Trim strips surrounding whitespace from the text fields. Length rules are
// meant for the trimmed text, so Validate calls it first.
func (f *ComplaintForm) Trim() {
	f.Title = strings.TrimSpace(f.Title)
	f.Location = strings.TrimSpace(f.Location)
	f.Description = strings.TrimSpace(f.Description)
}

func (f *NewsForm) Trim() {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
}

func (f *FeedbackForm) Trim() {
	f.Content = strings.TrimSpace(f.Content)
}

func (f *CommentForm) Trim() {
	f.Content = strings.TrimSpace(f.Content)
}
