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

type NewsService struct {
	db      *gorm.DB
	uploads *UploadService
}

func NewNewsService(db *gorm.DB, uploads *UploadService) *NewsService {
	return &NewsService{db: db, uploads: uploads}
}

type NewsListRequest struct {
	PageRequest
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
}

func (s *NewsService) List(req *NewsListRequest) (*ListResponse[models.News], error) {
	req.normalize()

	query := s.db.Model(&models.News{})
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if q := strings.TrimSpace(req.Search); q != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}

	var items []models.News
	if err := query.Preload("Category").
		Order("date DESC, id DESC").
		Offset(req.offset()).Limit(req.PageSize).
		Find(&items).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return newList(items, total, req.PageRequest), nil
}

func (s *NewsService) Get(id uint) (*models.News, error) {
	var news models.News
	if err := s.db.Preload("Category").First(&news, id).Error; err != nil {
		return nil, notFoundOr(err, ErrNewsNotFound)
	}
	return &news, nil
}

func (s *NewsService) checkCategory(id uint) error {
	var count int64
	if err := s.db.Model(&models.NewsCategory{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return response.Wrap(err, "database error")
	}
	if count == 0 {
		return response.NewUnprocessable("data tidak valid", map[string]string{"category_id": "tidak valid"})
	}
	return nil
}

// Create publishes a news item. image may be nil.
func (s *NewsService) Create(ctx context.Context, adminID uint, form *validation.NewsForm, image *ImageFile) (*models.News, error) {
	if fields := validation.Validate(form); fields != nil {
		return nil, response.NewUnprocessable("data tidak valid", fields)
	}
	if err := s.checkCategory(form.CategoryID); err != nil {
		return nil, err
	}

	news := models.News{
		Title:      form.Title,
		Content:    form.Content,
		CategoryID: form.CategoryID,
		Date:       form.Date,
		AdminID:    adminID,
	}
	if image != nil {
		url, err := s.uploads.Save(ctx, KindNews, image)
		if err != nil {
			return nil, err
		}
		news.PhotoURL = url
	}

	if err := s.db.Create(&news).Error; err != nil {
		s.uploads.Discard(ctx, news.PhotoURL)
		return nil, response.Wrap(err, "gagal menyimpan berita")
	}
	logger.Infof("[News] %d created by admin %d", news.ID, adminID)
	return s.Get(news.ID)
}

// Update edits a news item. Without image the stored photo is kept; with one
// the new photo replaces it and the old asset is removed from the host.
func (s *NewsService) Update(ctx context.Context, id uint, form *validation.NewsForm, image *ImageFile) (*models.News, error) {
	if fields := validation.Validate(form); fields != nil {
		return nil, response.NewUnprocessable("data tidak valid", fields)
	}
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(form.CategoryID); err != nil {
		return nil, err
	}

	oldPhoto := existing.PhotoURL
	photo := oldPhoto
	if image != nil {
		if photo, err = s.uploads.Save(ctx, KindNews, image); err != nil {
			return nil, err
		}
	}

	err = s.db.Model(&models.News{}).Where("id = ?", id).Updates(map[string]interface{}{
		"title":       form.Title,
		"content":     form.Content,
		"category_id": form.CategoryID,
		"date":        form.Date,
		"photo_url":   photo,
	}).Error
	if err != nil {
		if photo != oldPhoto {
			s.uploads.Discard(ctx, photo)
		}
		return nil, response.Wrap(err, "gagal memperbarui berita")
	}
	if photo != oldPhoto {
		s.uploads.Discard(ctx, oldPhoto)
	}
	return s.Get(id)
}

func (s *NewsService) BulkDelete(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, response.NewBadRequest("tidak ada berita yang dipilih")
	}
	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("news_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&models.News{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, response.Wrap(err, "gagal menghapus berita")
	}
	logger.Infof("[News] Deleted %d news item(s)", deleted)
	return deleted, nil
}

func (s *NewsService) Categories() ([]models.NewsCategory, error) {
	var categories []models.NewsCategory
	if err := s.db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return categories, nil
}

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

type CommentListRequest struct {
	PageRequest
}

// List returns the comments of a news item, oldest first.
func (s *CommentService) List(newsID uint, req *CommentListRequest) (*ListResponse[models.Comment], error) {
	req.normalize()
	if err := s.ensureNews(newsID); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.Comment{}).Where("news_id = ?", newsID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	var items []models.Comment
	if err := query.Preload("User", publicUserFields).
		Order("created_at ASC, id ASC").
		Offset(req.offset()).Limit(req.PageSize).
		Find(&items).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return newList(items, total, req.PageRequest), nil
}

func (s *CommentService) Create(userID, newsID uint, form *validation.CommentForm) (*models.Comment, error) {
	content := strings.TrimSpace(form.Content)
	if content == "" {
		return nil, response.NewUnprocessable("data tidak valid", map[string]string{"content": "tidak boleh kosong"})
	}
	if err := s.ensureNews(newsID); err != nil {
		return nil, err
	}

	comment := models.Comment{NewsID: newsID, UserID: userID, Content: content}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, response.Wrap(err, "gagal menyimpan komentar")
	}
	if err := s.db.Preload("User", publicUserFields).First(&comment, comment.ID).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return &comment, nil
}

func (s *CommentService) BulkDelete(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, response.NewBadRequest("tidak ada komentar yang dipilih")
	}
	result := s.db.Where("id IN ?", ids).Delete(&models.Comment{})
	if result.Error != nil {
		return 0, response.Wrap(result.Error, "gagal menghapus komentar")
	}
	return result.RowsAffected, nil
}

func (s *CommentService) ensureNews(newsID uint) error {
	var news models.News
	err := s.db.Select("id").First(&news, newsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNewsNotFound
	}
	if err != nil {
		return response.Wrap(err, "database error")
	}
	return nil
}

func publicUserFields(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "photo_url", "role")
}
