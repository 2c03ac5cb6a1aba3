package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/middleware"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/pkg/response"
)

type ChatbotHandler struct {
	chatbotService *services.ChatbotService
}

func NewChatbotHandler(chatbotService *services.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService}
}

// Ask answers a free-text message or a menu topic.
// POST /api/chatbot
func (h *ChatbotHandler) Ask(c *gin.Context) {
	var req services.ChatbotAskRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.chatbotService.Ask(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// GET /api/chatbot/me
func (h *ChatbotHandler) MyResponses(c *gin.Context) {
	var req services.ChatbotListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.chatbotService.MyResponses(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GET /api/chatbot/topics
func (h *ChatbotHandler) Topics(c *gin.Context) {
	response.Success(c, h.chatbotService.Topics())
}

// POST /api/chatbot/suggestions
func (h *ChatbotHandler) AddSuggestion(c *gin.Context) {
	var req services.SuggestionRequest
	if !bindJSON(c, &req) {
		return
	}

	suggestion, err := h.chatbotService.AddSuggestion(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, suggestion)
}

// GET /api/chatbot/suggestions/:complaint_id
func (h *ChatbotHandler) ListSuggestions(c *gin.Context) {
	id, ok := parseID(c, "complaint_id")
	if !ok {
		return
	}

	items, err := h.chatbotService.ListSuggestions(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}

// GET /api/chatbot/history/:complaint_id
func (h *ChatbotHandler) ListHistory(c *gin.Context) {
	id, ok := parseID(c, "complaint_id")
	if !ok {
		return
	}

	items, err := h.chatbotService.ListHistory(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, items)
}
