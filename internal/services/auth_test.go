package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/internal/utils"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
)

func httpStatus(err error) int {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return 0
}

func newAuthService(t *testing.T) (*AuthService, *recordingQueue) {
	db := newTestDB(t)
	queue := &recordingQueue{}
	return NewAuthService(db, testConfig(), NewDBOTPStore(db), queue), queue
}

func TestAuthService_LoginLocal(t *testing.T) {
	svc, _ := newAuthService(t)
	createUser(t, svc.db, "warga@example.com", models.RoleUser)

	result, err := svc.Login(&LoginRequest{Email: "Warga@Example.com", Password: "rahasia123"}, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("Login() should return both tokens")
	}

	claims, err := utils.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != result.User.ID || claims.Role != models.RoleUser {
		t.Errorf("claims = %+v, expected user %d", claims, result.User.ID)
	}
	if result.User.LastLogin == nil {
		t.Error("LastLogin should be set")
	}
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newAuthService(t)
	createUser(t, svc.db, "warga@example.com", models.RoleUser)
	pending := createUser(t, svc.db, "baru@example.com", models.RoleUser)
	svc.db.Model(pending).Update("is_verified", false)
	disabled := createUser(t, svc.db, "nonaktif@example.com", models.RoleUser)
	svc.db.Model(disabled).Update("is_active", false)

	tests := []struct {
		name   string
		req    LoginRequest
		status int
	}{
		{"wrong password", LoginRequest{Email: "warga@example.com", Password: "salah"}, http.StatusUnauthorized},
		{"unknown email", LoginRequest{Email: "siapa@example.com", Password: "rahasia123"}, http.StatusUnauthorized},
		{"unverified", LoginRequest{Email: "baru@example.com", Password: "rahasia123"}, http.StatusForbidden},
		{"disabled", LoginRequest{Email: "nonaktif@example.com", Password: "rahasia123"}, http.StatusForbidden},
		{"ldap disabled", LoginRequest{Email: "officer", Password: "x", AuthType: "ldap"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(&tt.req, "", "")
			if got := httpStatus(err); got != tt.status {
				t.Errorf("Login() status = %d (%v), expected %d", got, err, tt.status)
			}
		})
	}
}

func TestAuthService_RegisterAndVerify(t *testing.T) {
	svc, queue := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &validation.RegisterForm{
		Name: "Siti", Email: "siti@example.com", Phone: "081298765432", Password: "kuatsekali",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.IsVerified {
		t.Fatal("new account should be unverified")
	}

	task := queue.lastOTP(t)
	if task.Email != "siti@example.com" || len(task.Code) != 6 {
		t.Fatalf("OTP task = %+v", task)
	}

	wrong := "000000"
	if task.Code == wrong {
		wrong = "111111"
	}
	if _, err := svc.VerifyOTP(ctx, &validation.OTPForm{Email: "siti@example.com", Code: wrong}, "", ""); httpStatus(err) != http.StatusBadRequest {
		t.Fatalf("wrong code status = %d, expected 400", httpStatus(err))
	}

	result, err := svc.VerifyOTP(ctx, &validation.OTPForm{Email: "siti@example.com", Code: task.Code}, "", "")
	if err != nil {
		t.Fatalf("VerifyOTP() error = %v", err)
	}
	if !result.User.IsVerified || result.AccessToken == "" {
		t.Errorf("VerifyOTP() result = %+v", result.User)
	}

	if _, err := svc.Register(ctx, &validation.RegisterForm{
		Name: "Siti", Email: "siti@example.com", Phone: "081298765432", Password: "kuatsekali",
	}); httpStatus(err) != http.StatusConflict {
		t.Errorf("second Register() status = %d, expected 409", httpStatus(err))
	}
}

func TestAuthService_ResendCooldown(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &validation.RegisterForm{
		Name: "Budi", Email: "budi@example.com", Phone: "081200000000", Password: "kuatsekali",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := svc.ResendOTP(ctx, "budi@example.com")
	if httpStatus(err) != http.StatusTooManyRequests {
		t.Errorf("ResendOTP() status = %d, expected 429", httpStatus(err))
	}
}

func TestAuthService_RefreshRotates(t *testing.T) {
	svc, _ := newAuthService(t)
	createUser(t, svc.db, "warga@example.com", models.RoleUser)

	login, err := svc.Login(&LoginRequest{Email: "warga@example.com", Password: "rahasia123"}, "", "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	rotated, err := svc.Refresh(login.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if rotated.RefreshToken == login.RefreshToken {
		t.Error("Refresh() should issue a new refresh token")
	}

	if _, err := svc.Refresh(login.RefreshToken, "", ""); httpStatus(err) != http.StatusUnauthorized {
		t.Errorf("reusing a rotated token status = %d, expected 401", httpStatus(err))
	}

	var old models.RefreshToken
	svc.db.Where("token_hash = ?", hashRefreshToken(login.RefreshToken)).First(&old)
	if old.ReplacedByTokenID == nil {
		t.Error("rotated token should point at its replacement")
	}

	if err := svc.RevokeRefreshToken(rotated.RefreshToken); err != nil {
		t.Fatalf("RevokeRefreshToken() error = %v", err)
	}
	if _, err := svc.Refresh(rotated.RefreshToken, "", ""); err == nil {
		t.Error("revoked token should not refresh")
	}
}

func TestAuthService_CreateAdminIfNotExists(t *testing.T) {
	svc, _ := newAuthService(t)

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("CreateAdminIfNotExists() error = %v", err)
	}
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second CreateAdminIfNotExists() error = %v", err)
	}

	var count int64
	svc.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count != 1 {
		t.Errorf("admin count = %d, expected 1", count)
	}

	if _, err := svc.Login(&LoginRequest{Email: defaultAdminEmail, Password: defaultAdminPassword}, "", ""); err != nil {
		t.Errorf("default admin login error = %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	user := createUser(t, svc.db, "admin@example.com", models.RoleAdmin)

	err := svc.ChangePassword(user.ID, &validation.PasswordChangeForm{OldPassword: "salah", NewPassword: "barubaru1"})
	if httpStatus(err) != http.StatusUnprocessableEntity {
		t.Errorf("wrong old password status = %d, expected 422", httpStatus(err))
	}

	if err := svc.ChangePassword(user.ID, &validation.PasswordChangeForm{OldPassword: "rahasia123", NewPassword: "barubaru1"}); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, err := svc.Login(&LoginRequest{Email: "admin@example.com", Password: "barubaru1"}, "", ""); err != nil {
		t.Errorf("login with new password error = %v", err)
	}
}
