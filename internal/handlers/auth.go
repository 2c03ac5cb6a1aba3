package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/middleware"
	"github.com/laporwarga/backend/internal/services"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
)

type AuthHandler struct {
	authService   *services.AuthService
	configService *services.SystemConfigService
	ldap          *config.LDAPConfig
}

func NewAuthHandler(authService *services.AuthService, configService *services.SystemConfigService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		configService: configService,
		ldap:          &cfg.LDAP,
	}
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// Register creates an unverified account and mails an OTP
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var form validation.RegisterForm
	if !bindJSON(c, &form) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{
		"email":   user.Email,
		"message": "kode verifikasi telah dikirim ke email Anda",
	})
}

// VerifyOTP activates the account and signs the user in
// POST /api/auth/otp/verify
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var form validation.OTPForm
	if !bindJSON(c, &form) {
		return
	}

	resp, err := h.authService.VerifyOTP(c.Request.Context(), &form, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// POST /api/auth/otp/resend
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req services.ResendOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "kode verifikasi baru telah dikirim"})
}

// Refresh exchanges a refresh token for a new session
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// GetCurrentUser returns the current logged-in user
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user)
}

// GetAuthConfig returns authentication configuration
// GET /api/auth/config
func (h *AuthHandler) GetAuthConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"ldap_enabled": h.configService.LDAPConfig(h.ldap).Enabled,
	})
}

// Logout revokes the refresh token when one is sent
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req services.RefreshRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.authService.RevokeRefreshToken(req.RefreshToken); err != nil {
		response.Error(c, response.Wrap(err, "gagal keluar"))
		return
	}
	response.Success(c, gin.H{"message": "berhasil keluar"})
}
