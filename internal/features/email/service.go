package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"go-hrops/internal/features/settings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type EmailService interface {
	SendEmail(ctx context.Context, tenantID primitive.ObjectID, to []string, subject, body string) error
}

type EmailServiceImpl struct {
	SettingsService settings.SettingsService
	Repo            *EmailRepository
	Logger          *zap.Logger
}

func NewEmailService(settingsService settings.SettingsService, repo *EmailRepository, logger *zap.Logger) EmailService {
	return &EmailServiceImpl{
		SettingsService: settingsService,
		Repo:            repo,
		Logger:          logger,
	}
}

// SendEmail delivers through the tenant's SMTP settings and records the
// attempt in the emails collection either way.
func (s *EmailServiceImpl) SendEmail(ctx context.Context, tenantID primitive.ObjectID, to []string, subject, body string) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	config, err := s.SettingsService.GetEmailConfig(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to fetch email config: %w", err)
	}
	if config == nil {
		return errors.New("email configuration not found")
	}
	if config.SMTPHost == "" || config.SMTPPort == 0 {
		return errors.New("invalid email configuration: missing host or port")
	}

	auth := smtp.PlainAuth("", config.SMTPUser, config.SMTPPassword, config.SMTPHost)
	addr := fmt.Sprintf("%s:%d", config.SMTPHost, config.SMTPPort)

	from := config.FromEmail
	if from == "" {
		from = config.SMTPUser
	}

	record := &Email{
		TenantID: tenantID,
		From:     from,
		To:       to,
		Subject:  subject,
		Body:     body,
		Status:   EmailQueued,
	}
	if s.Repo != nil {
		_ = s.Repo.Create(ctx, record)
	}

	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", to[0], subject, body))

	err = smtp.SendMail(addr, auth, from, to, msg)

	status := EmailSent
	errMsg := ""
	if err != nil {
		status = EmailFailed
		errMsg = err.Error()
	}
	if s.Repo != nil {
		_ = s.Repo.UpdateStatus(ctx, record.ID, status, errMsg)
	}

	if err != nil {
		s.Logger.Warn("email delivery failed",
			zap.String("smtp_host", config.SMTPHost),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
