package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/pkg/response"
	"gorm.io/gorm"
)

// LLMConfigHandler manages the model endpoints the chatbot can use.
type LLMConfigHandler struct {
	llmConfigService *services.LLMConfigService
}

func NewLLMConfigHandler(db *gorm.DB) *LLMConfigHandler {
	return &LLMConfigHandler{
		llmConfigService: services.NewLLMConfigService(db),
	}
}

func (h *LLMConfigHandler) List(c *gin.Context) {
	var req services.LLMConfigListRequest
	if !bindQuery(c, &req) {
		return
	}

	resp, err := h.llmConfigService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

func (h *LLMConfigHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	config, err := h.llmConfigService.GetByID(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, config)
}

func (h *LLMConfigHandler) Create(c *gin.Context) {
	var req services.CreateLLMConfigRequest
	if !bindJSON(c, &req) {
		return
	}

	config, err := h.llmConfigService.Create(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, config)
}

func (h *LLMConfigHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateLLMConfigRequest
	if !bindJSON(c, &req) {
		return
	}

	config, err := h.llmConfigService.Update(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, config)
}

func (h *LLMConfigHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.llmConfigService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "konfigurasi dihapus"})
}
