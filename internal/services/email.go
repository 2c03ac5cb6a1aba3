package services

import (
	"errors"
	"fmt"
	"html"

	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/pkg/logger"
	"gopkg.in/gomail.v2"
)

var ErrEmailDisabled = errors.New("email is not configured")

// Mailer sends a rendered HTML message.
type Mailer interface {
	Send(to, subject, body string) error
}

type EmailService struct {
	cfg *config.SMTPConfig
}

func NewEmailService(cfg *config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled && s.cfg.Host != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	logger.Infof("[Email] Sent %q to %s", subject, to)
	return nil
}

func renderOTPEmail(name, code string, ttlMinutes int) (subject, body string) {
	subject = "Kode verifikasi akun Lapor"
	body = fmt.Sprintf(`<p>Halo %s,</p>
<p>Kode verifikasi Anda adalah:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px;">%s</p>
<p>Kode berlaku selama %d menit. Abaikan email ini jika Anda tidak mendaftar.</p>`,
		html.EscapeString(name), code, ttlMinutes)
	return subject, body
}
