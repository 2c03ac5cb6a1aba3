package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/middleware"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
)

type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
}

func NewUserHandler(userService *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	var req services.UserListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.userService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Update edits another account. Admins cannot edit themselves here.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(middleware.GetUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "pengguna dihapus"})
}

// GET /api/profile
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.userService.Profile(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateProfile accepts multipart name, phone and an optional "photo".
// PUT /api/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var form validation.ProfileForm
	if !bindForm(c, &form) {
		return
	}
	photo, closePhoto, err := formImage(c, "photo")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closePhoto()

	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &form, photo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// POST /api/profile/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var form validation.PasswordChangeForm
	if !bindJSON(c, &form) {
		return
	}

	if err := h.authService.ChangePassword(middleware.GetUserID(c), &form); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "kata sandi diperbarui"})
}
