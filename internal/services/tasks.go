package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/lifecycle"
	"github.com/laporwarga/backend/pkg/logger"
	"gorm.io/gorm"
)

// TaskHandler executes background tasks for both queue modes.
type TaskHandler struct {
	db         *gorm.DB
	mailer     Mailer
	notifier   *NotificationService
	ttlMinutes int
}

func NewTaskHandler(db *gorm.DB, mailer Mailer, notifier *NotificationService, ttlMinutes int) *TaskHandler {
	return &TaskHandler{db: db, mailer: mailer, notifier: notifier, ttlMinutes: ttlMinutes}
}

// Process matches TaskProcessorFunc.
func (h *TaskHandler) Process(ctx context.Context, taskType string, payload []byte) error {
	switch taskType {
	case TaskTypeOTPDeliver:
		var task OTPDeliveryTask
		if err := json.Unmarshal(payload, &task); err != nil {
			return err
		}
		return h.deliverOTP(&task)
	case TaskTypeComplaintNotify:
		var task ComplaintNotifyTask
		if err := json.Unmarshal(payload, &task); err != nil {
			return err
		}
		return h.notifyComplaint(ctx, &task)
	default:
		return fmt.Errorf("unknown task type %q", taskType)
	}
}

func (h *TaskHandler) deliverOTP(task *OTPDeliveryTask) error {
	if h.mailer == nil {
		logger.Warnf("[Task] No mailer, OTP for %s not delivered", task.Email)
		return nil
	}
	subject, body := renderOTPEmail(task.Name, task.Code, h.ttlMinutes)
	err := h.mailer.Send(task.Email, subject, body)
	if errors.Is(err, ErrEmailDisabled) {
		logger.Warnf("[Task] SMTP disabled, OTP for %s not delivered", task.Email)
		return nil
	}
	return err
}

func (h *TaskHandler) notifyComplaint(ctx context.Context, task *ComplaintNotifyTask) error {
	if h.notifier == nil || !h.notifier.Enabled() {
		return nil
	}
	var complaint models.Complaint
	if err := h.db.WithContext(ctx).Preload("Category").First(&complaint, task.ComplaintID).Error; err != nil {
		return fmt.Errorf("load complaint %d: %w", task.ComplaintID, err)
	}
	if task.Event == "status" {
		return h.notifier.NotifyStatusChange(&complaint, lifecycle.Status(task.From))
	}
	return h.notifier.NotifyNewComplaint(&complaint)
}
