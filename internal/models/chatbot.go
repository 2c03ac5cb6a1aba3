package models

import "time"

// ChatbotSuggestion records an admin prompt about a complaint and the model's draft answer.
type ChatbotSuggestion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"index;not null" json:"complaint_id"`
	AdminID     uint      `gorm:"index" json:"admin_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Response    string    `gorm:"type:text" json:"response"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (ChatbotSuggestion) TableName() string { return "chatbot_suggestions" }

// ChatbotHistory is the per-complaint conversation transcript.
type ChatbotHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"index;not null" json:"complaint_id"`
	Sender      string    `gorm:"size:20" json:"sender"` // admin, bot, system
	Message     string    `gorm:"type:text;not null" json:"message"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (ChatbotHistory) TableName() string { return "chatbot_histories" }

// ChatbotResponse is one exchange of a citizen with the help bot.
type ChatbotResponse struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Topic     string    `gorm:"size:50" json:"topic,omitempty"`
	Request   string    `gorm:"type:text;not null" json:"request"`
	Response  string    `gorm:"type:text" json:"response"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ChatbotResponse) TableName() string { return "chatbot_responses" }
