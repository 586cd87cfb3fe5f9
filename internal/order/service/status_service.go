package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"catering/internal/domain"
	apperrors "catering/internal/errors"
)

type TransactionRunner interface {
	RunAtomic(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type OrderRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.Status, changedAt time.Time, reason *string) error
}

type StatusHistoryRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, entry domain.StatusHistoryEntry) (uint, error)
}

// StatusService is the order status state machine. Every status change in the
// system flows through Transition: it validates the requested edge against
// the transition table and applies the status write together with exactly one
// history append, all inside a single transaction.
type StatusService struct {
	txRunner    TransactionRunner
	orderRepo   OrderRepository
	historyRepo StatusHistoryRepository
	notifier    StatusNotifier
	logger      *zap.Logger
}

func NewStatusService(
	txRunner TransactionRunner,
	orderRepo OrderRepository,
	historyRepo StatusHistoryRepository,
	notifier StatusNotifier,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Transition moves the order to newStatus. The row is locked before the
// current status is re-validated, so two concurrent transitions on the same
// order cannot both succeed against stale state. On any error nothing is
// persisted: no status change, no timestamp, no history row.
func (s *StatusService) Transition(ctx context.Context, orderID uint, newStatus domain.Status, notes *string) (*domain.Order, error) {
	return s.transition(ctx, orderID, newStatus, notes, nil)
}

// Cancel moves the order to cancelled, re-checking the cancellable window
// against the row loaded under lock. Callers may pre-check the window for
// fast feedback, but only this check holds under concurrent transitions: a
// staff change landing just before the lock is seen here, not by the caller.
func (s *StatusService) Cancel(ctx context.Context, orderID uint, reason *string) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.StatusCancelled, reason, func(order *domain.Order) error {
		if !order.Status.IsEditable() {
			return apperrors.NewNotEditableError(
				fmt.Sprintf("order in status %s can no longer be cancelled", order.Status),
				order.Status.String(),
			)
		}
		return nil
	})
}

// transition is the single write path for status. The guard, when present,
// runs on the locked row before the edge check and can veto the change with
// a domain error of its own.
func (s *StatusService) transition(ctx context.Context, orderID uint, newStatus domain.Status, notes *string, guard func(*domain.Order) error) (*domain.Order, error) {
	var updated *domain.Order
	var oldStatus domain.Status

	err := s.txRunner.RunAtomic(ctx, func(tx *sql.Tx) error {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if guard != nil {
			if err := guard(order); err != nil {
				return err
			}
		}

		if !domain.CanTransition(order.Status, newStatus) {
			return apperrors.NewInvalidTransitionError(order.Status.String(), newStatus.String())
		}

		now := time.Now().UTC()

		if err := s.orderRepo.UpdateStatus(ctx, tx, orderID, newStatus, now, notes); err != nil {
			return err
		}

		entry := domain.StatusHistoryEntry{
			OrderID:   orderID,
			OldStatus: order.Status,
			NewStatus: newStatus,
			Notes:     notes,
			ChangedAt: now,
		}
		if _, err := s.historyRepo.Insert(ctx, tx, entry); err != nil {
			return err
		}

		oldStatus = order.Status
		updated = applyTransition(order, newStatus, now, notes)
		return nil
	})
	if err != nil {
		_, invalidEdge := apperrors.IsInvalidTransitionError(err)
		_, windowClosed := apperrors.IsNotEditableError(err)
		if invalidEdge || windowClosed {
			s.logger.Warn("status transition rejected",
				zap.Uint("orderId", orderID),
				zap.String("requestedStatus", newStatus.String()),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.Uint("orderId", orderID),
		zap.String("oldStatus", oldStatus.String()),
		zap.String("newStatus", newStatus.String()))

	s.notifier.NotifyStatusChanged(ctx, updated, oldStatus)

	return updated, nil
}

// applyTransition mirrors on the loaded order what UpdateStatus wrote,
// so callers get the post-transition state without a second read.
func applyTransition(order *domain.Order, newStatus domain.Status, changedAt time.Time, notes *string) *domain.Order {
	order.Status = newStatus
	order.UpdatedAt = changedAt

	switch newStatus {
	case domain.StatusConfirmed:
		order.ConfirmedAt = &changedAt
	case domain.StatusDelivered:
		order.DeliveredAt = &changedAt
	case domain.StatusCancelled:
		order.CancelledAt = &changedAt
		order.CancellationReason = notes
	}

	return order
}
