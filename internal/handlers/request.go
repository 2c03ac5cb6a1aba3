package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/laporwarga/backend/internal/middleware"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
)

const invalidData = "data tidak valid"

// bindJSON binds the request body. Rule violations answer 422 with a field
// map; malformed bodies answer 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// bindForm binds multipart or urlencoded fields.
func bindForm(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.Error(c, response.NewUnprocessable(invalidData, validation.FromError(err)))
		return
	}
	response.BadRequest(c, "format permintaan tidak valid")
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "id tidak valid")
		return 0, false
	}
	return uint(id), true
}

func currentActor(c *gin.Context) services.Actor {
	return services.Actor{ID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

// formImage opens an optional multipart file. The returned file is nil when
// the field is absent; close must be called otherwise.
func formImage(c *gin.Context, field string) (file *services.ImageFile, close func(), err error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, response.NewBadRequest("berkas tidak dapat dibaca")
	}
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, response.Wrap(err, "berkas tidak dapat dibaca")
	}
	return &services.ImageFile{Name: header.Filename, Size: header.Size, Body: f}, func() { f.Close() }, nil
}
