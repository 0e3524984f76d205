package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medivault/api/internal/config"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPService builds a gomail-backed Service, or the no-op service
// when no SMTP host is configured.
func NewSMTPService(cfg config.SMTPConfig) Service {
	if cfg.Host == "" {
		return NewNoopService()
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendRecordNotification(ctx context.Context, to, patientName, labName, recordTitle string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\n%s has published a new record to your MediVault account: %q.\n\nLog in to view it.",
		patientName, labName, recordTitle,
	)
	return s.send(to, "New medical record available", body)
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour MediVault account has been created.", name)
	return s.send(to, "Welcome to MediVault", body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
