package services

import (
	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/response"
	"gorm.io/gorm"
)

var ErrLLMConfigNotFound = response.NewNotFound("llm config not found")

type LLMConfigService struct {
	db *gorm.DB
}

func NewLLMConfigService(db *gorm.DB) *LLMConfigService {
	return &LLMConfigService{db: db}
}

type LLMConfigListRequest struct {
	PageRequest
	Name     string `form:"name"`
	Provider string `form:"provider"`
	IsActive *bool  `form:"is_active"`
}

type CreateLLMConfigRequest struct {
	Name         string  `json:"name" binding:"required"`
	Provider     string  `json:"provider" binding:"omitempty,oneof=openai azure anthropic ollama gemini"`
	BaseURL      string  `json:"base_url"`
	APIKey       string  `json:"api_key"`
	Model        string  `json:"model" binding:"required"`
	SystemPrompt string  `json:"system_prompt"`
	MaxTokens    int     `json:"max_tokens" binding:"min=0"`
	Temperature  float64 `json:"temperature" binding:"min=0,max=2"`
	IsDefault    bool    `json:"is_default"`
	IsActive     *bool   `json:"is_active"`
}

type UpdateLLMConfigRequest struct {
	Name         string   `json:"name"`
	Provider     string   `json:"provider" binding:"omitempty,oneof=openai azure anthropic ollama gemini"`
	BaseURL      *string  `json:"base_url"`
	APIKey       string   `json:"api_key"`
	Model        string   `json:"model"`
	SystemPrompt *string  `json:"system_prompt"`
	MaxTokens    *int     `json:"max_tokens"`
	Temperature  *float64 `json:"temperature"`
	IsDefault    *bool    `json:"is_default"`
	IsActive     *bool    `json:"is_active"`
}

func (s *LLMConfigService) List(req *LLMConfigListRequest) (*ListResponse[models.LLMConfig], error) {
	req.normalize()

	query := s.db.Model(&models.LLMConfig{})
	if req.Name != "" {
		query = query.Where("name LIKE ? OR model LIKE ?", "%"+req.Name+"%", "%"+req.Name+"%")
	}
	if req.Provider != "" {
		query = query.Where("provider = ?", req.Provider)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	var configs []models.LLMConfig
	if err := query.Offset(req.offset()).Limit(req.PageSize).Order("is_default DESC, id ASC").Find(&configs).Error; err != nil {
		return nil, err
	}
	for i := range configs {
		configs[i].APIKeyMask = configs[i].MaskAPIKey()
	}
	return newList(configs, total, req.PageRequest), nil
}

func (s *LLMConfigService) GetByID(id uint) (*models.LLMConfig, error) {
	var cfg models.LLMConfig
	if err := s.db.First(&cfg, id).Error; err != nil {
		return nil, notFoundOr(err, ErrLLMConfigNotFound)
	}
	cfg.APIKeyMask = cfg.MaskAPIKey()
	return &cfg, nil
}

func (s *LLMConfigService) Create(req *CreateLLMConfigRequest) (*models.LLMConfig, error) {
	cfg := models.LLMConfig{
		Name:         req.Name,
		Provider:     req.Provider,
		BaseURL:      req.BaseURL,
		APIKey:       req.APIKey,
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
		IsDefault:    req.IsDefault,
		IsActive:     true,
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if cfg.IsDefault {
			if err := tx.Model(&models.LLMConfig{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&cfg).Error; err != nil {
			return err
		}
		// is_active defaults to true in the schema, so false needs an explicit update.
		if req.IsActive != nil && !*req.IsActive {
			cfg.IsActive = false
			return tx.Model(&cfg).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return nil, response.Wrap(err, "gagal menyimpan konfigurasi LLM")
	}
	cfg.APIKeyMask = cfg.MaskAPIKey()
	return &cfg, nil
}

func (s *LLMConfigService) Update(id uint, req *UpdateLLMConfigRequest) (*models.LLMConfig, error) {
	var cfg models.LLMConfig
	if err := s.db.First(&cfg, id).Error; err != nil {
		return nil, notFoundOr(err, ErrLLMConfigNotFound)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Provider != "" {
		updates["provider"] = req.Provider
	}
	if req.BaseURL != nil {
		updates["base_url"] = *req.BaseURL
	}
	if req.APIKey != "" {
		updates["api_key"] = req.APIKey
	}
	if req.Model != "" {
		updates["model"] = req.Model
	}
	if req.SystemPrompt != nil {
		updates["system_prompt"] = *req.SystemPrompt
	}
	if req.MaxTokens != nil {
		updates["max_tokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		updates["temperature"] = *req.Temperature
	}
	if req.IsDefault != nil {
		updates["is_default"] = *req.IsDefault
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, response.NewBadRequest("no fields to update")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault != nil && *req.IsDefault {
			if err := tx.Model(&models.LLMConfig{}).Where("is_default = ? AND id <> ?", true, id).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Model(&cfg).Updates(updates).Error
	})
	if err != nil {
		return nil, response.Wrap(err, "gagal memperbarui konfigurasi LLM")
	}
	return s.GetByID(id)
}

func (s *LLMConfigService) Delete(id uint) error {
	result := s.db.Delete(&models.LLMConfig{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLLMConfigNotFound
	}
	return nil
}
