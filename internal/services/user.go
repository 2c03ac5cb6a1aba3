package services

import (
	"context"
	"errors"
	"strings"

	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/logger"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
	"gorm.io/gorm"
)

type UserService struct {
	db      *gorm.DB
	uploads *UploadService
}

func NewUserService(db *gorm.DB, uploads *UploadService) *UserService {
	return &UserService{db: db, uploads: uploads}
}

type UserListRequest struct {
	PageRequest
	Search string `form:"search"`
	Role   string `form:"role" binding:"omitempty,oneof=admin user"`
}

type UpdateUserRequest struct {
	validation.UserEditForm
	IsActive *bool `json:"is_active"`
}

// List searches name, email and phone.
func (s *UserService) List(req *UserListRequest) (*ListResponse[models.User], error) {
	req.normalize()

	query := s.db.Model(&models.User{})
	if q := strings.TrimSpace(req.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	var users []models.User
	if err := query.Order("id ASC").Offset(req.offset()).Limit(req.PageSize).Find(&users).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return newList(users, total, req.PageRequest), nil
}

func (s *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return &user, nil
}

// Update edits another account. Admins change their own data through the profile.
func (s *UserService) Update(actorID, id uint, req *UpdateUserRequest) (*models.User, error) {
	if actorID == id {
		return nil, response.NewBadRequest("tidak dapat mengubah akun sendiri di sini")
	}
	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if email != user.Email {
		var count int64
		s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, id).Count(&count)
		if count > 0 {
			return nil, response.NewUnprocessable("data tidak valid", map[string]string{"email": "sudah digunakan"})
		}
	}

	updates := map[string]interface{}{
		"name":  strings.TrimSpace(req.Name),
		"email": email,
		"phone": req.Phone,
		"role":  req.Role,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewUnprocessable("data tidak valid", map[string]string{"email": "sudah digunakan"})
		}
		return nil, response.Wrap(err, "gagal memperbarui pengguna")
	}
	logger.Infof("[User] %d updated by admin %d", id, actorID)
	return s.Get(id)
}

func (s *UserService) Delete(actorID, id uint) error {
	if actorID == id {
		return response.NewBadRequest("tidak dapat menghapus akun sendiri")
	}
	user, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked_at IS NULL", id).
			Update("revoked_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

// Profile returns the caller's own account.
func (s *UserService) Profile(userID uint) (*models.User, error) {
	return s.Get(userID)
}

// UpdateProfile changes name, phone and optionally the photo. A replaced photo
// is removed from the image host.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, form *validation.ProfileForm, photo *ImageFile) (*models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	oldPhoto := user.PhotoURL
	updates := map[string]interface{}{"name": strings.TrimSpace(form.Name)}
	if form.Phone != "" {
		updates["phone"] = form.Phone
	}
	if photo != nil {
		url, err := s.uploads.Save(ctx, KindProfile, photo)
		if err != nil {
			return nil, err
		}
		updates["photo_url"] = url
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		if url, ok := updates["photo_url"].(string); ok {
			s.uploads.Discard(ctx, url)
		}
		return nil, response.Wrap(err, "gagal memperbarui profil")
	}
	if _, ok := updates["photo_url"]; ok {
		s.uploads.Discard(ctx, oldPhoto)
	}
	return s.Get(userID)
}
