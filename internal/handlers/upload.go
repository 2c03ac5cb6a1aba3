package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/middleware"
	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/pkg/response"
)

type UploadHandler struct {
	uploadService *services.UploadService
}

func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload stores one image and returns its public URL. It never removes
// existing assets; replacements go through the owning resource.
// POST /api/uploads
func (h *UploadHandler) Upload(c *gin.Context) {
	kind := services.KindComplaint
	if raw := c.PostForm("kind"); raw != "" {
		parsed, ok := services.ParseImageKind(raw)
		if !ok {
			response.BadRequest(c, "jenis gambar tidak dikenal")
			return
		}
		kind = parsed
	}
	if kind == services.KindNews && middleware.GetRole(c) != models.RoleAdmin {
		response.Forbidden(c, "akses khusus admin")
		return
	}

	file, closeFile, err := formImage(c, "image")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()
	if file == nil {
		response.Error(c, response.NewUnprocessable(invalidData, map[string]string{"image": "wajib diisi"}))
		return
	}

	url, err := h.uploadService.Save(c.Request.Context(), kind, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"url": url})
}
