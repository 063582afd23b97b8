package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
)

// StockAlertNotifier delivers low-stock alerts to whoever needs to order
// more material. The logging implementation below is the default; a real
// deployment can plug in email or a procurement webhook.
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert is the payload handed to notifiers when an item falls below
// its configured minimum.
type StockAlert struct {
	ItemType        string `json:"item_type"`
	ItemCode        string `json:"item_code"`
	ItemName        string `json:"item_name"`
	CurrentQuantity string `json:"current_quantity"`
	MinimumQuantity string `json:"minimum_quantity"`
	AlertType       string `json:"alert_type"` // "low_stock" or "out_of_stock"
}

// StockBelowThresholdHandler turns StockBelowThreshold events into
// procurement alerts.
type StockBelowThresholdHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewStockBelowThresholdHandler builds the handler. A nil notifier is
// allowed; the handler then only logs the condition.
func NewStockBelowThresholdHandler(logger *zap.Logger, notifier StockAlertNotifier) *StockBelowThresholdHandler {
	return &StockBelowThresholdHandler{logger: logger, notifier: notifier}
}

func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle logs the shortage and, when a notifier is configured, forwards an
// alert. Notifier failures are logged but never fail the event, so a flaky
// alert channel cannot block stock movements.
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowThreshold, event.EventType())
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("item_type", ev.ItemType.String()),
		zap.String("item_code", ev.ItemCode),
		zap.String("quantity", ev.Quantity.String()),
		zap.String("min_stock", ev.MinStock.String()),
	)

	if h.notifier == nil {
		return nil
	}

	alert := StockAlert{
		ItemType:        ev.ItemType.String(),
		ItemCode:        ev.ItemCode,
		ItemName:        ev.ItemName,
		CurrentQuantity: ev.Quantity.String(),
		MinimumQuantity: ev.MinStock.String(),
		AlertType:       "low_stock",
	}
	if ev.Quantity.IsZero() {
		alert.AlertType = "out_of_stock"
	}

	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		h.logger.Error("failed to send stock alert notification",
			zap.String("item_code", alert.ItemCode),
			zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*StockBelowThresholdHandler)(nil)

// LoggingStockAlertNotifier writes alerts to the application log. It is
// the default channel when no external notifier is configured.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("item_type", alert.ItemType),
		zap.String("item_code", alert.ItemCode),
		zap.String("current_qty", alert.CurrentQuantity),
		zap.String("minimum_qty", alert.MinimumQuantity),
	)
	return nil
}

var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
