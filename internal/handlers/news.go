package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/middleware"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
)

type NewsHandler struct {
	newsService    *services.NewsService
	commentService *services.CommentService
}

func NewNewsHandler(newsService *services.NewsService, commentService *services.CommentService) *NewsHandler {
	return &NewsHandler{
		newsService:    newsService,
		commentService: commentService,
	}
}

// GET /api/news
func (h *NewsHandler) List(c *gin.Context) {
	var req services.NewsListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.newsService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GET /api/news/:id
func (h *NewsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	news, err := h.newsService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, news)
}

// Create accepts multipart fields plus an optional "image" file.
// POST /api/news
func (h *NewsHandler) Create(c *gin.Context) {
	var form validation.NewsForm
	if !bindForm(c, &form) {
		return
	}
	image, closeImage, err := formImage(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeImage()

	news, err := h.newsService.Create(c.Request.Context(), middleware.GetUserID(c), &form, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, news)
}

// Update keeps the stored photo unless a new image is sent.
// PUT /api/news/:id
func (h *NewsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var form validation.NewsForm
	if !bindForm(c, &form) {
		return
	}
	image, closeImage, err := formImage(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeImage()

	news, err := h.newsService.Update(c.Request.Context(), id, &form, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, news)
}

// DELETE /api/news
func (h *NewsHandler) BulkDelete(c *gin.Context) {
	var req services.BulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}

	deleted, err := h.newsService.BulkDelete(req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}

// GET /api/news-categories
func (h *NewsHandler) Categories(c *gin.Context) {
	categories, err := h.newsService.Categories()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}

// GET /api/news/:id/comments
func (h *NewsHandler) ListComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.CommentListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.commentService.List(id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// POST /api/news/:id/comments
func (h *NewsHandler) CreateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var form validation.CommentForm
	if !bindJSON(c, &form) {
		return
	}

	comment, err := h.commentService.Create(middleware.GetUserID(c), id, &form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// DELETE /api/comments
func (h *NewsHandler) DeleteComments(c *gin.Context) {
	var req services.BulkDeleteRequest
	if !bindJSON(c, &req) {
		return
	}

	deleted, err := h.commentService.BulkDelete(req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
