package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stocker/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// LowStockNotifier is told when a product crosses down to the low-stock
// threshold. Delivery is best effort.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, product *catalog.Product) error
}

// Message is an outbound operator notification
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message with a single attempt
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRecipient is returned when no operator address is configured
var ErrNoRecipient = errors.New("no operator address configured for low stock alerts")

// ThresholdNotifier formats low-stock alerts and hands them to a Mailer
type ThresholdNotifier struct {
	mailer    Mailer
	recipient string
	logger    *zap.Logger
}

// NewThresholdNotifier creates a notifier sending to the operator address
func NewThresholdNotifier(mailer Mailer, recipient string, logger *zap.Logger) *ThresholdNotifier {
	return &ThresholdNotifier{
		mailer:    mailer,
		recipient: strings.TrimSpace(recipient),
		logger:    logger,
	}
}

// NotifyLowStock sends one alert for the product's current quantity
func (n *ThresholdNotifier) NotifyLowStock(ctx context.Context, product *catalog.Product) error {
	if n.recipient == "" {
		return ErrNoRecipient
	}

	msg := BuildLowStockMessage(product, n.recipient)
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send low stock alert for %s: %w", product.ID, err)
	}

	n.logger.Info("low stock alert sent",
		zap.String("product_id", product.ID.String()),
		zap.Int("quantity", product.QuantityInStock),
		zap.String("recipient", n.recipient),
	)
	return nil
}

// BuildLowStockMessage renders the alert subject and body
func BuildLowStockMessage(product *catalog.Product, recipient string) Message {
	return Message{
		To:      recipient,
		Subject: fmt.Sprintf("Low stock alert: %s", product.Name),
		Body: fmt.Sprintf(
			"The stock for product %q is low.\n\nCurrent quantity: %d\nLow stock threshold: %d\n",
			product.Name, product.QuantityInStock, catalog.LowStockThreshold,
		),
	}
}

var _ LowStockNotifier = (*ThresholdNotifier)(nil)
