package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/lifecycle"
	"github.com/laporwarga/backend/pkg/logger"
	"github.com/laporwarga/backend/pkg/response"
	"github.com/laporwarga/backend/pkg/validation"
	"gorm.io/gorm"
)

var complaintNumberPattern = regexp.MustCompile(`^#KES\d{6}$`)

type ComplaintService struct {
	db    *gorm.DB
	queue TaskQueue
}

func NewComplaintService(db *gorm.DB, queue TaskQueue) *ComplaintService {
	return &ComplaintService{db: db, queue: queue}
}

type CreateComplaintRequest struct {
	validation.ComplaintForm
	ComplaintNumber string   `json:"complaint_number" binding:"required"`
	PhotoURLs       []string `json:"photo_urls" binding:"max=3,dive,required,url"`
}

type ComplaintListRequest struct {
	PageRequest
	CategoryID uint   `form:"category_id"`
	Status     string `form:"status" binding:"omitempty,oneof=proses tanggapi selesai batal"`
	Search     string `form:"search"`
}

type BulkDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1,dive,min=1"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=selesai batal"`
	Reason string `json:"reason" binding:"max=500"`
}

// Create stores a citizen complaint. The number is chosen by the client and
// must be unique.
func (s *ComplaintService) Create(userID uint, req *CreateComplaintRequest) (*models.Complaint, error) {
	if fields := validation.Validate(req); fields != nil {
		return nil, response.NewUnprocessable("data tidak valid", fields)
	}
	if !complaintNumberPattern.MatchString(req.ComplaintNumber) {
		return nil, response.NewUnprocessable("data tidak valid", map[string]string{"complaint_number": "tidak valid"})
	}

	var category models.ComplaintCategory
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnprocessable("data tidak valid", map[string]string{"category_id": "tidak valid"})
		}
		return nil, response.Wrap(err, "database error")
	}

	complaint := models.Complaint{
		ComplaintNumber: req.ComplaintNumber,
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Location:        req.Location,
		Description:     req.Description,
		PhotoURLs:       append([]string{}, req.PhotoURLs...),
		Status:          lifecycle.Proses,
		UserID:          userID,
	}
	if err := s.db.Create(&complaint).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("nomor pengaduan sudah digunakan, silakan kirim ulang")
		}
		return nil, response.Wrap(err, "gagal menyimpan pengaduan")
	}
	complaint.Category = &category
	complaint.Feedbacks = []models.Feedback{}

	logger.Infof("[Complaint] %s created by user %d with %d photo(s)", complaint.ComplaintNumber, userID, len(complaint.PhotoURLs))
	s.notify(&ComplaintNotifyTask{ComplaintID: complaint.ID, Event: "created"})
	return &complaint, nil
}

// List returns every complaint to admins and only their own to citizens.
func (s *ComplaintService) List(actor Actor, req *ComplaintListRequest) (*ListResponse[models.Complaint], error) {
	req.normalize()

	query := s.db.Model(&models.Complaint{})
	if !actor.IsAdmin() {
		query = query.Where("user_id = ?", actor.ID)
	}
	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if q := strings.TrimSpace(req.Search); q != "" {
		like := "%" + q + "%"
		query = query.Where("title LIKE ? OR complaint_number LIKE ? OR location LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}

	var items []models.Complaint
	if err := query.
		Preload("Category").
		Preload("Feedbacks", orderByID).
		Order("created_at DESC, id DESC").
		Offset(req.offset()).Limit(req.PageSize).
		Find(&items).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return newList(items, total, req.PageRequest), nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// Get loads a complaint with its feedback ordered oldest first.
func (s *ComplaintService) Get(actor Actor, id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.db.
		Preload("Category").
		Preload("User").
		Preload("Feedbacks", orderByID).
		First(&complaint, id).Error
	if err != nil {
		return nil, notFoundOr(err, ErrComplaintNotFound)
	}
	if !actor.IsAdmin() && complaint.UserID != actor.ID {
		return nil, ErrComplaintNotFound
	}
	return &complaint, nil
}

func (s *ComplaintService) BulkDelete(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, response.NewBadRequest("tidak ada pengaduan yang dipilih")
	}
	result := s.db.Where("id IN ?", ids).Delete(&models.Complaint{})
	if result.Error != nil {
		return 0, response.Wrap(result.Error, "gagal menghapus pengaduan")
	}
	logger.Infof("[Complaint] Deleted %d of %d selected complaint(s)", result.RowsAffected, len(ids))
	return result.RowsAffected, nil
}

// CreateFeedback records the first officer response. The complaint moves from
// proses to tanggapi in the same transaction.
func (s *ComplaintService) CreateFeedback(adminID, complaintID uint, form *validation.FeedbackForm) (*models.Feedback, error) {
	if fields := validation.Validate(form); fields != nil {
		return nil, response.NewUnprocessable("data tidak valid", fields)
	}
	var feedback models.Feedback
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint
		if err := tx.First(&complaint, complaintID).Error; err != nil {
			return notFoundOr(err, ErrComplaintNotFound)
		}
		if !lifecycle.Allows(complaint.Status, lifecycle.CreateFeedback) {
			return actionConflict(complaint.Status)
		}
		next, err := lifecycle.Transition(complaint.Status, lifecycle.Tanggapi)
		if err != nil {
			return actionConflict(complaint.Status)
		}
		if err := s.moveStatus(tx, &complaint, next, ""); err != nil {
			return err
		}

		feedback = models.Feedback{
			ComplaintID: complaint.ID,
			AdminID:     adminID,
			Content:     form.Content,
		}
		if err := tx.Create(&feedback).Error; err != nil {
			return response.Wrap(err, "gagal menyimpan tanggapan")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("[Complaint] Feedback %d added to complaint %d by admin %d", feedback.ID, complaintID, adminID)
	s.notify(&ComplaintNotifyTask{ComplaintID: complaintID, Event: "status", From: string(lifecycle.Proses)})
	return &feedback, nil
}

// UpdateFeedback edits a response while the complaint is still tanggapi.
func (s *ComplaintService) UpdateFeedback(complaintID, feedbackID uint, form *validation.FeedbackForm) (*models.Feedback, error) {
	if fields := validation.Validate(form); fields != nil {
		return nil, response.NewUnprocessable("data tidak valid", fields)
	}
	var complaint models.Complaint
	if err := s.db.First(&complaint, complaintID).Error; err != nil {
		return nil, notFoundOr(err, ErrComplaintNotFound)
	}
	if !lifecycle.Allows(complaint.Status, lifecycle.UpdateFeedback) {
		return nil, actionConflict(complaint.Status)
	}

	var feedback models.Feedback
	if err := s.db.Where("id = ? AND complaint_id = ?", feedbackID, complaintID).First(&feedback).Error; err != nil {
		return nil, notFoundOr(err, ErrFeedbackNotFound)
	}
	feedback.Content = form.Content
	if err := s.db.Model(&feedback).Update("content", feedback.Content).Error; err != nil {
		return nil, response.Wrap(err, "gagal memperbarui tanggapan")
	}
	return &feedback, nil
}

// UpdateStatus closes a complaint as selesai or cancels it with a reason.
func (s *ComplaintService) UpdateStatus(complaintID uint, req *UpdateStatusRequest) (*models.Complaint, error) {
	target, err := lifecycle.Parse(req.Status)
	if err != nil {
		return nil, response.NewBadRequest(err.Error())
	}

	var complaint models.Complaint
	if err := s.db.First(&complaint, complaintID).Error; err != nil {
		return nil, notFoundOr(err, ErrComplaintNotFound)
	}
	from := complaint.Status
	next, err := lifecycle.Transition(from, target)
	if err != nil {
		return nil, response.NewConflict("status " + from.Label() + " tidak dapat diubah menjadi " + target.Label())
	}

	reason := ""
	if next == lifecycle.Batal {
		reason = strings.TrimSpace(req.Reason)
	}
	if err := s.moveStatus(s.db, &complaint, next, reason); err != nil {
		return nil, err
	}

	logger.Infof("[Complaint] %s moved %s -> %s", complaint.ComplaintNumber, from, next)
	s.notify(&ComplaintNotifyTask{ComplaintID: complaint.ID, Event: "status", From: string(from)})
	return &complaint, nil
}

// moveStatus updates only if the stored status is still the one that was read.
func (s *ComplaintService) moveStatus(tx *gorm.DB, complaint *models.Complaint, next lifecycle.Status, reason string) error {
	updates := map[string]interface{}{"status": next, "updated_at": time.Now()}
	if next == lifecycle.Batal {
		updates["cancel_reason"] = reason
	}
	result := tx.Model(&models.Complaint{}).
		Where("id = ? AND status = ?", complaint.ID, complaint.Status).
		Updates(updates)
	if result.Error != nil {
		return response.Wrap(result.Error, "gagal memperbarui status")
	}
	if result.RowsAffected == 0 {
		return response.NewConflict("status pengaduan telah berubah, muat ulang halaman")
	}
	complaint.Status = next
	if next == lifecycle.Batal {
		complaint.CancelReason = reason
	}
	return nil
}

func actionConflict(status lifecycle.Status) error {
	return response.NewConflict("aksi tidak diizinkan untuk pengaduan berstatus " + status.Label())
}

func (s *ComplaintService) Categories() ([]models.ComplaintCategory, error) {
	var categories []models.ComplaintCategory
	if err := s.db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return categories, nil
}

func (s *ComplaintService) notify(task *ComplaintNotifyTask) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(TaskTypeComplaintNotify, task); err != nil {
		logger.Warnf("[Complaint] Failed to enqueue notification for %d: %v", task.ComplaintID, err)
	}
}
