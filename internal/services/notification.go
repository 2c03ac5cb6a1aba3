package services

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/lifecycle"
	"github.com/laporwarga/backend/pkg/logger"
)

// ChatSender is the part of *tgbotapi.BotAPI used for alerts.
type ChatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NotificationService pushes officer alerts to a Telegram group.
type NotificationService struct {
	bot    ChatSender
	chatID int64
}

// NewNotificationService returns a service that drops alerts when Telegram
// is disabled or the bot token is rejected.
func NewNotificationService(cfg *config.TelegramConfig) *NotificationService {
	if cfg == nil || !cfg.Enabled || cfg.BotToken == "" || cfg.ChatID == 0 {
		logger.Infof("[Notification] Telegram disabled")
		return &NotificationService{}
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Warnf("[Notification] Telegram bot init failed: %v", err)
		return &NotificationService{}
	}
	logger.Infof("[Notification] Telegram bot @%s ready", bot.Self.UserName)
	return &NotificationService{bot: bot, chatID: cfg.ChatID}
}

func NewNotificationServiceWithSender(bot ChatSender, chatID int64) *NotificationService {
	return &NotificationService{bot: bot, chatID: chatID}
}

func (s *NotificationService) Enabled() bool {
	return s.bot != nil && s.chatID != 0
}

func (s *NotificationService) send(text string) error {
	if !s.Enabled() {
		return nil
	}
	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// NotifyNewComplaint alerts officers that a citizen filed a complaint.
func (s *NotificationService) NotifyNewComplaint(c *models.Complaint) error {
	category := ""
	if c.Category != nil {
		category = c.Category.Name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Pengaduan baru* %s\n", escapeMarkdown(c.ComplaintNumber))
	fmt.Fprintf(&b, "*%s*\n", escapeMarkdown(c.Title))
	if category != "" {
		fmt.Fprintf(&b, "Kategori: %s\n", escapeMarkdown(category))
	}
	fmt.Fprintf(&b, "Lokasi: %s\n", escapeMarkdown(c.Location))
	fmt.Fprintf(&b, "Foto: %d", len(c.PhotoURLs))
	return s.send(b.String())
}

// NotifyStatusChange alerts officers that a complaint moved to a new status.
func (s *NotificationService) NotifyStatusChange(c *models.Complaint, from lifecycle.Status) error {
	text := fmt.Sprintf("Pengaduan %s: %s → *%s*",
		escapeMarkdown(c.ComplaintNumber), from.Label(), c.Status.Label())
	if c.Status == lifecycle.Batal && c.CancelReason != "" {
		text += "\nAlasan: " + escapeMarkdown(c.CancelReason)
	}
	return s.send(text)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
