package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/middleware"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
)

type ComplaintHandler struct {
	complaintService *services.ComplaintService
}

func NewComplaintHandler(complaintService *services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

// POST /api/complaints
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req services.CreateComplaintRequest
	if !bindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// List returns every complaint for admins and only the caller's own for citizens.
// GET /api/complaints
func (h *ComplaintHandler) List(c *gin.Context) {
	var req services.ComplaintListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.complaintService.List(currentActor(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Mine lists the caller's complaints even when the caller is an admin.
// GET /api/complaints/me
func (h *ComplaintHandler) Mine(c *gin.Context) {
	var req services.ComplaintListRequest
	if !bindQuery(c, &req) {
		return
	}

	actor := services.Actor{ID: middleware.GetUserID(c)}
	result, err := h.complaintService.List(actor, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GET /api/complaints/:id
func (h *ComplaintHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	complaint, err := h.complaintService.Get(currentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, complaint)
}

// DELETE /api/complaints
func (h *ComplaintHandler) BulkDelete(c *gin.Context) {
	var req services.BulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}

	deleted, err := h.complaintService.BulkDelete(req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// CreateFeedback records the admin response and moves the complaint to tanggapi.
// POST /api/complaints/:id/feedback
func (h *ComplaintHandler) CreateFeedback(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var form validation.FeedbackForm
	if !bindJSON(c, &form) {
		return
	}

	feedback, err := h.complaintService.CreateFeedback(middleware.GetUserID(c), id, &form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, feedback)
}

// PUT /api/complaints/:id/feedback/:feedback_id
func (h *ComplaintHandler) UpdateFeedback(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	feedbackID, ok := parseID(c, "feedback_id")
	if !ok {
		return
	}
	var form validation.FeedbackForm
	if !bindJSON(c, &form) {
		return
	}

	feedback, err := h.complaintService.UpdateFeedback(id, feedbackID, &form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feedback)
}

// PUT /api/complaints/:id/status
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	complaint, err := h.complaintService.UpdateStatus(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, complaint)
}

// GET /api/complaint-categories
func (h *ComplaintHandler) Categories(c *gin.Context) {
	categories, err := h.complaintService.Categories()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}
