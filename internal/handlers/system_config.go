package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
	}
}

// GetGroup lists the settings of one group (auth, ldap, chatbot, maintenance).
// Secrets come back masked.
func (h *SystemConfigHandler) GetGroup(c *gin.Context) {
	configs, err := h.configService.GetByGroup(c.Param("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, configs)
}

func (h *SystemConfigHandler) UpdateGroup(c *gin.Context) {
	group := c.Param("group")
	var req services.UpdateConfigRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.configService.UpdateGroup(group, &req); err != nil {
		response.Error(c, err)
		return
	}

	configs, err := h.configService.GetByGroup(group)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, configs)
}
