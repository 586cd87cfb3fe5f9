package service

import (
	"context"

	"go.uber.org/zap"

	"catering/internal/domain"
)

// StatusNotifier is told about committed status changes. Delivery of
// customer-facing notifications lives outside this core; the default
// implementation only logs.
type StatusNotifier interface {
	NotifyStatusChanged(ctx context.Context, order *domain.Order, oldStatus domain.Status)
}

type LogStatusNotifier struct {
	logger *zap.Logger
}

func NewLogStatusNotifier(logger *zap.Logger) *LogStatusNotifier {
	return &LogStatusNotifier{logger: logger}
}

func (n *LogStatusNotifier) NotifyStatusChanged(_ context.Context, order *domain.Order, oldStatus domain.Status) {
	n.logger.Info("status change notification",
		zap.String("orderNumber", order.OrderNumber),
		zap.Uint("ownerId", order.OwnerID),
		zap.String("oldStatus", oldStatus.String()),
		zap.String("newStatus", order.Status.String()))
}
