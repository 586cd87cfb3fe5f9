package usecase

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"catering/internal/domain"
	"catering/internal/dto"
	apperrors "catering/internal/errors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type TransactionRunner interface {
	RunAtomic(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) (uint, error)
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	List(ctx context.Context, filter dto.ListOrdersFilter, page dto.PageRequest) ([]domain.Order, error)
	Count(ctx context.Context, filter dto.ListOrdersFilter) (int, error)
	UpdateDetails(ctx context.Context, tx *sql.Tx, order *domain.Order) error
}

type StatusHistoryRepository interface {
	ListByOrderID(ctx context.Context, orderID uint) ([]domain.StatusHistoryEntry, error)
}

type StatusEngine interface {
	Transition(ctx context.Context, orderID uint, newStatus domain.Status, notes *string) (*domain.Order, error)
	Cancel(ctx context.Context, orderID uint, reason *string) (*domain.Order, error)
}

type AccessPolicy interface {
	Authorize(requester domain.Requester, order *domain.Order) error
}

type OrderUseCase struct {
	orderRepo    OrderRepository
	historyRepo  StatusHistoryRepository
	statusEngine StatusEngine
	policy       AccessPolicy
	txRunner     TransactionRunner
	logger       *zap.Logger
}

func NewOrderUseCase(
	orderRepo OrderRepository,
	historyRepo StatusHistoryRepository,
	statusEngine StatusEngine,
	policy AccessPolicy,
	txRunner TransactionRunner,
	logger *zap.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:    orderRepo,
		historyRepo:  historyRepo,
		statusEngine: statusEngine,
		policy:       policy,
		txRunner:     txRunner,
		logger:       logger,
	}
}

// CreateOrder places a new order in pending status with a freshly generated
// order number. The store's uniqueness constraint is the final authority on
// the number: a collision surfaces as a retryable Conflict.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, ownerID uint, spec dto.CreateOrderSpec) (*domain.Order, error) {
	order := &domain.Order{
		OrderNumber:         generateOrderNumber(time.Now().UTC()),
		OwnerID:             ownerID,
		Status:              domain.StatusPending,
		DeliveryDate:        spec.DeliveryDate,
		DeliveryHour:        spec.DeliveryHour,
		DeliveryAddress:     spec.DeliveryAddress,
		PersonCount:         spec.PersonCount,
		MenuPrice:           spec.MenuPrice,
		TotalPrice:          spec.MenuPrice * float64(spec.PersonCount),
		SpecialInstructions: spec.SpecialInstructions,
	}

	id, err := uc.orderRepo.Insert(ctx, order)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order created",
		zap.Uint("orderId", id),
		zap.String("orderNumber", order.OrderNumber),
		zap.Uint("ownerId", ownerID))

	return uc.orderRepo.FindByID(ctx, id)
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, id uint, requester domain.Requester) (*domain.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.policy.Authorize(requester, order); err != nil {
		return nil, err
	}

	return order, nil
}

// ListOrders returns a page of orders, newest-created first. A customer
// requester is implicitly scoped to their own orders; staff see everything
// subject only to the explicit filter.
func (uc *OrderUseCase) ListOrders(ctx context.Context, requester domain.Requester, filter dto.ListOrdersFilter, page dto.PageRequest) (*dto.OrderPage, error) {
	if !requester.Role.IsStaff() {
		filter.OwnerID = &requester.ID
	}

	if page.Limit <= 0 {
		page.Limit = defaultPageLimit
	}
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}

	orders, err := uc.orderRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	total, err := uc.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.OrderPage{
		Items:  orders,
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}, nil
}

// UpdateOrderDetails changes content fields inside the editable window
// (pending or confirmed). Status and per-status timestamps are untouched.
// The window is re-checked on the locked row inside the transaction, so a
// concurrent status change cannot slip the write past a closed window.
func (uc *OrderUseCase) UpdateOrderDetails(ctx context.Context, id uint, patch dto.UpdateOrderDetails, requester domain.Requester) (*domain.Order, error) {
	order, err := uc.GetOrder(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if !order.Status.IsEditable() {
		return nil, notEditable("edited", order.Status)
	}

	if patch.IsEmpty() {
		return order, nil
	}

	var updated *domain.Order
	err = uc.txRunner.RunAtomic(ctx, func(tx *sql.Tx) error {
		current, err := uc.orderRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if !current.Status.IsEditable() {
			return notEditable("edited", current.Status)
		}

		applyDetailsPatch(current, patch)
		current.TotalPrice = current.MenuPrice * float64(current.PersonCount)

		if err := uc.orderRepo.UpdateDetails(ctx, tx, current); err != nil {
			return err
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order details updated", zap.Uint("orderId", id))

	return updated, nil
}

func applyDetailsPatch(order *domain.Order, patch dto.UpdateOrderDetails) {
	if patch.DeliveryDate != nil {
		order.DeliveryDate = *patch.DeliveryDate
	}
	if patch.DeliveryHour != nil {
		order.DeliveryHour = *patch.DeliveryHour
	}
	if patch.DeliveryAddress != nil {
		order.DeliveryAddress = *patch.DeliveryAddress
	}
	if patch.PersonCount != nil {
		order.PersonCount = *patch.PersonCount
	}
	if patch.MenuPrice != nil {
		order.MenuPrice = *patch.MenuPrice
	}
	if patch.SpecialInstructions != nil {
		order.SpecialInstructions = patch.SpecialInstructions
	}
}

func notEditable(verb string, status domain.Status) error {
	return apperrors.NewNotEditableError(
		fmt.Sprintf("order in status %s can no longer be %s", status, verb),
		status.String(),
	)
}

// CancelOrder cancels inside the cancellable window (pending or confirmed).
// The cancellation goes through the status engine, so it is validated and
// audited like every other transition, with the reason as the note. The
// window check here is only fast feedback; the engine re-checks it on the
// locked row, which is what holds against a concurrent staff transition.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, id uint, requester domain.Requester, reason string) (*domain.Order, error) {
	order, err := uc.GetOrder(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if !order.Status.IsEditable() {
		return nil, notEditable("cancelled", order.Status)
	}

	var notes *string
	if reason != "" {
		notes = &reason
	}

	return uc.statusEngine.Cancel(ctx, id, notes)
}

// TransitionStatus applies a status change through the status engine.
// Authorization happens before this call; the engine trusts its caller.
func (uc *OrderUseCase) TransitionStatus(ctx context.Context, id uint, newStatus domain.Status, notes *string) (*domain.Order, error) {
	return uc.statusEngine.Transition(ctx, id, newStatus, notes)
}

// GetStatusHistory returns the order's audit trail ascending by change time.
func (uc *OrderUseCase) GetStatusHistory(ctx context.Context, id uint, requester domain.Requester) ([]domain.StatusHistoryEntry, error) {
	order, err := uc.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.policy.Authorize(requester, order); err != nil {
		return nil, err
	}

	return uc.historyRepo.ListByOrderID(ctx, order.ID)
}

// generateOrderNumber builds a human-facing number from the UTC date and a
// random suffix. Collisions are improbable and caught by the unique index.
func generateOrderNumber(now time.Time) string {
	id := uuid.New()
	suffix := strings.ToUpper(hex.EncodeToString(id[:3]))
	return fmt.Sprintf("CAT-%s-%s", now.Format("20060102"), suffix)
}
