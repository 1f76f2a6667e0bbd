// Package notification delivers operator alerts by email.
package notification

import (
	"github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewMailer returns an SMTPMailer when an SMTP host is configured, and a
// LogMailer otherwise
func NewMailer(cfg config.NotificationConfig, logger *zap.Logger) inventory.Mailer {
	if cfg.SMTPHost == "" {
		logger.Info("SMTP host not configured, low stock alerts will only be logged")
		return NewLogMailer(logger)
	}
	logger.Info("using SMTP mailer",
		zap.String("host", cfg.SMTPHost),
		zap.Int("port", cfg.SMTPPort),
	)
	return NewSMTPMailer(SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.From,
	})
}
