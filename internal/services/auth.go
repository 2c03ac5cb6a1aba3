package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/internal/utils"
	"github.com/laporwarga/backend/pkg/logger"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@lapor.local"
	defaultAdminPassword = "admin12345"
)

var (
	errBadCredentials = response.NewUnauthorized("email atau kata sandi salah")
	errUserDisabled   = response.NewForbidden("akun dinonaktifkan")
	errUnverified     = response.NewForbidden("akun belum diverifikasi")
)

type AuthService struct {
	db        *gorm.DB
	cfg       *config.Config
	configSvc *SystemConfigService
	otp       OTPStore
	queue     TaskQueue
}

func NewAuthService(db *gorm.DB, cfg *config.Config, otp OTPStore, queue TaskQueue) *AuthService {
	return &AuthService{
		db:        db,
		cfg:       cfg,
		configSvc: NewSystemConfigService(db),
		otp:       otp,
		queue:     queue,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	AuthType string `json:"auth_type" binding:"omitempty,oneof=local ldap"`
}

type LoginResult struct {
	AccessToken     string       `json:"access_token"`
	AccessExpireAt  time.Time    `json:"access_expire_at"`
	RefreshToken    string       `json:"refresh_token"`
	RefreshExpireAt time.Time    `json:"refresh_expire_at"`
	User            *models.User `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Login authenticates by email. LDAP officers sign in with their directory uid.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	var user *models.User
	var err error

	switch req.AuthType {
	case "", "local":
		user, err = s.localAuth(req.Email, req.Password)
	case "ldap":
		user, err = s.ldapAuth(req.Email, req.Password)
	default:
		return nil, response.NewBadRequest("invalid auth type")
	}
	if err != nil {
		return nil, err
	}

	result, _, err := s.issueSession(s.db, s.sessionTTL(), user, clientIP, userAgent)
	if err != nil {
		return nil, response.Wrap(err, "gagal membuat sesi")
	}

	now := time.Now()
	s.db.Model(user).Update("last_login", now)
	user.LastLogin = &now
	return result, nil
}

type sessionTTL struct {
	accessHours  int
	refreshHours int
}

// sessionTTL reads token lifetimes from system config, falling back to the file.
func (s *AuthService) sessionTTL() sessionTTL {
	access := s.configSvc.GetInt("auth_access_token_expire_hours", s.cfg.JWT.ExpireHour)
	if access <= 0 {
		access = s.cfg.JWT.ExpireHour
	}
	refresh := s.configSvc.GetInt("auth_refresh_token_expire_hours", s.cfg.JWT.RefreshExpireHour)
	if refresh <= 0 {
		refresh = 720
	}
	return sessionTTL{accessHours: access, refreshHours: refresh}
}

// issueSession signs an access token and stores a new refresh token through tx.
func (s *AuthService) issueSession(tx *gorm.DB, ttl sessionTTL, user *models.User, clientIP, userAgent string) (*LoginResult, *models.RefreshToken, error) {
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, ttl.accessHours)
	if err != nil {
		return nil, nil, err
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	record := &models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   hashRefreshToken(refreshToken),
		ExpiresAt:   now.Add(time.Duration(ttl.refreshHours) * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   truncate(userAgent, 255),
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, nil, err
	}

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  now.Add(time.Duration(ttl.accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: record.ExpiresAt,
		User:            user,
	}, record, nil
}

// Refresh rotates a refresh token. The old row is revoked and linked to its replacement.
func (s *AuthService) Refresh(refreshToken, clientIP, userAgent string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, response.NewBadRequest("refresh token required")
	}

	var stored models.RefreshToken
	if err := s.db.Where(&models.RefreshToken{TokenHash: hashRefreshToken(refreshToken)}).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid refresh token")
		}
		return nil, response.Wrap(err, "database error")
	}
	if !stored.Usable(time.Now()) {
		return nil, response.NewUnauthorized("refresh token expired or revoked")
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	if !user.IsActive {
		return nil, errUserDisabled
	}

	ttl := s.sessionTTL()
	var result *LoginResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var replacement *models.RefreshToken
		var err error
		result, replacement, err = s.issueSession(tx, ttl, &user, clientIP, userAgent)
		if err != nil {
			return err
		}
		return tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":           time.Now(),
			"replaced_by_token_id": replacement.ID,
		}).Error
	})
	if err != nil {
		return nil, response.Wrap(err, "gagal memperbarui sesi")
	}
	return result, nil
}

func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hashRefreshToken(refreshToken)).
		Update("revoked_at", time.Now()).Error
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AuthService) localAuth(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where(&models.User{Email: normalizeEmail(email), AuthType: "local"}).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, response.Wrap(err, "database error")
	}
	if !utils.CheckPassword(password, user.Password) {
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, errUserDisabled
	}
	if !user.IsVerified {
		return nil, errUnverified
	}
	return &user, nil
}

func (s *AuthService) ldapAuth(username, password string) (*models.User, error) {
	ldapSvc := NewLDAPService(s.configSvc.LDAPConfig(&s.cfg.LDAP))
	if !ldapSvc.IsEnabled() {
		return nil, response.NewBadRequest("LDAP login is not enabled")
	}
	ldapUser, err := ldapSvc.Authenticate(username, password)
	if err != nil {
		logger.Warnf("[Auth] LDAP login failed for %s: %v", username, err)
		return nil, errBadCredentials
	}

	email := normalizeEmail(ldapUser.Email)
	if email == "" {
		email = normalizeEmail(ldapUser.UID) + "@ldap.local"
	}

	var user models.User
	err = s.db.Where(&models.User{Email: email}).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Directory accounts are officers.
		user = models.User{
			Email:      email,
			Name:       ldapUser.Name,
			Phone:      ldapUser.Phone,
			Role:       models.RoleAdmin,
			AuthType:   "ldap",
			IsActive:   true,
			IsVerified: true,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, response.Wrap(err, "database error")
		}
		logger.Infof("[Auth] Created LDAP user %s", email)
	} else if err != nil {
		return nil, response.Wrap(err, "database error")
	} else if user.AuthType != "ldap" {
		return nil, response.NewConflict("email sudah terdaftar sebagai akun lokal")
	}

	if !user.IsActive {
		return nil, errUserDisabled
	}
	if ldapUser.Name != "" && ldapUser.Name != user.Name {
		user.Name = ldapUser.Name
		s.db.Model(&user).Update("name", user.Name)
	}
	return &user, nil
}

// Register creates an unverified citizen account and sends an OTP.
// Registering again with an unverified email replaces the pending details.
func (s *AuthService) Register(ctx context.Context, form *validation.RegisterForm) (*models.User, error) {
	email := normalizeEmail(form.Email)
	hashed, err := utils.HashPassword(form.Password)
	if err != nil {
		return nil, response.Wrap(err, "gagal memproses kata sandi")
	}

	var user models.User
	err = s.db.Where(&models.User{Email: email}).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:    email,
			Name:     strings.TrimSpace(form.Name),
			Phone:    form.Phone,
			Password: hashed,
			Role:     models.RoleUser,
			AuthType: "local",
			IsActive: true,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, response.Wrap(err, "database error")
		}
	case err != nil:
		return nil, response.Wrap(err, "database error")
	case user.IsVerified:
		return nil, response.NewConflict("email sudah terdaftar")
	default:
		user.Name = strings.TrimSpace(form.Name)
		user.Phone = form.Phone
		user.Password = hashed
		if err := s.db.Save(&user).Error; err != nil {
			return nil, response.Wrap(err, "database error")
		}
	}

	if err := s.sendOTP(ctx, &user); err != nil {
		return nil, err
	}
	logger.Infof("[Auth] Registered %s, awaiting verification", email)
	return &user, nil
}

// VerifyOTP marks the account verified and opens a session.
func (s *AuthService) VerifyOTP(ctx context.Context, form *validation.OTPForm, clientIP, userAgent string) (*LoginResult, error) {
	var user models.User
	if err := s.db.Where(&models.User{Email: normalizeEmail(form.Email)}).First(&user).Error; err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	if user.IsVerified {
		return nil, response.NewConflict("akun sudah diverifikasi")
	}

	if err := s.otp.Check(ctx, user.Email, form.Code, s.cfg.OTP.MaxAttempts); err != nil {
		return nil, otpError(err)
	}

	ttl := s.sessionTTL()
	var result *LoginResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("is_verified", true).Error; err != nil {
			return err
		}
		user.IsVerified = true
		var err error
		result, _, err = s.issueSession(tx, ttl, &user, clientIP, userAgent)
		return err
	})
	if err != nil {
		return nil, response.Wrap(err, "gagal memverifikasi akun")
	}
	return result, nil
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.Where(&models.User{Email: normalizeEmail(email)}).First(&user).Error; err != nil {
		return notFoundOr(err, ErrUserNotFound)
	}
	if user.IsVerified {
		return response.NewConflict("akun sudah diverifikasi")
	}
	return s.sendOTP(ctx, &user)
}

func (s *AuthService) sendOTP(ctx context.Context, user *models.User) error {
	cooldown := time.Duration(s.cfg.OTP.ResendCooldownSec) * time.Second
	if err := s.otp.Reserve(ctx, user.Email, cooldown); err != nil {
		return otpError(err)
	}

	code, err := utils.GenerateNumericCode(s.cfg.OTP.Length)
	if err != nil {
		return response.Wrap(err, "gagal membuat kode OTP")
	}
	if err := s.otp.Put(ctx, user.Email, code, otpTTL(&s.cfg.OTP)); err != nil {
		return response.Wrap(err, "gagal menyimpan kode OTP")
	}

	if s.queue == nil {
		return nil
	}
	if err := s.queue.Enqueue(TaskTypeOTPDeliver, &OTPDeliveryTask{Email: user.Email, Name: user.Name, Code: code}); err != nil {
		return response.Wrap(err, "gagal mengirim kode OTP")
	}
	return nil
}

func otpError(err error) error {
	switch {
	case errors.Is(err, ErrOTPCooldown), errors.Is(err, ErrOTPTooManyAttempts):
		return response.NewTooManyRequests(err.Error())
	case errors.Is(err, ErrOTPInvalid), errors.Is(err, ErrOTPExpired):
		return response.NewBadRequest(err.Error())
	}
	return response.Wrap(err, "OTP error")
}

func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return &user, nil
}

// CreateAdminIfNotExists seeds one local officer account on an empty install.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where(&models.User{Role: models.RoleAdmin}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:      defaultAdminEmail,
		Password:   hashed,
		Name:       "Administrator",
		Role:       models.RoleAdmin,
		AuthType:   "local",
		IsActive:   true,
		IsVerified: true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Warnf("[Auth] Default admin %s created, change its password", defaultAdminEmail)
	return nil
}

func (s *AuthService) ChangePassword(userID uint, form *validation.PasswordChangeForm) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return notFoundOr(err, ErrUserNotFound)
	}
	if user.AuthType != "local" {
		return response.NewBadRequest("akun LDAP tidak dapat mengganti kata sandi di sini")
	}
	if !utils.CheckPassword(form.OldPassword, user.Password) {
		return response.NewUnprocessable("kata sandi lama salah", map[string]string{"old_password": "tidak cocok"})
	}

	hashed, err := utils.HashPassword(form.NewPassword)
	if err != nil {
		return response.Wrap(err, "gagal memproses kata sandi")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password", hashed).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked_at IS NULL", user.ID).
			Update("revoked_at", time.Now()).Error
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
