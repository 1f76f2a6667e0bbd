package notification

import (
	"context"

	"github.com/stocker/backend/internal/application/inventory"
	"github.com/stocker/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogMailer writes messages to the log instead of sending them
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(l *zap.Logger) *LogMailer {
	return &LogMailer{logger: l}
}

// Send logs the message
func (m *LogMailer) Send(ctx context.Context, msg inventory.Message) error {
	logger.Enrich(ctx, m.logger).Info("email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

var _ inventory.Mailer = (*LogMailer)(nil)
