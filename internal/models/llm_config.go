package models

import (
	"time"

	"gorm.io/gorm"
)

// LLMConfig is a chatbot model backend stored in the database.
type LLMConfig struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Provider     string         `gorm:"size:50;default:openai" json:"provider"` // openai, azure, anthropic, ollama, gemini
	BaseURL      string         `gorm:"size:500" json:"base_url"`
	APIKey       string         `gorm:"size:500" json:"-"`
	APIKeyMask   string         `gorm:"-" json:"api_key_mask"`
	Model        string         `gorm:"size:100" json:"model"`
	SystemPrompt string         `gorm:"type:text" json:"system_prompt"` // overrides chatbot.system_prompt when set
	MaxTokens    int            `gorm:"default:1024" json:"max_tokens"`
	Temperature  float64        `gorm:"default:0.3" json:"temperature"`
	IsDefault    bool           `gorm:"default:false" json:"is_default"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LLMConfig) TableName() string { return "llm_configs" }

func (l *LLMConfig) MaskAPIKey() string {
	if len(l.APIKey) <= 8 {
		return "****"
	}
	return l.APIKey[:4] + "****" + l.APIKey[len(l.APIKey)-4:]
}
