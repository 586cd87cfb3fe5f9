package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"catering/internal/domain"
	apperrors "catering/internal/errors"
	"catering/internal/infrastructure/mysql"
	"catering/internal/order/repository"
	"catering/internal/testutil"
)

// Full lifecycle against a real database: every edge of the happy path,
// one rejected edge in the middle, and a replayable audit trail at the end.
func TestStatusService_FullLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	orderRepo := repository.NewMySQLOrderRepository(db)
	historyRepo := repository.NewMySQLStatusHistoryRepository(db)
	txManager := mysql.NewTxManager(db, 5*time.Second)
	svc := NewStatusService(txManager, orderRepo, historyRepo, NewLogStatusNotifier(zap.NewNop()), zap.NewNop())

	orderID, err := orderRepo.Insert(ctx, &domain.Order{
		OrderNumber:     "CAT-20250615-LIFE01",
		OwnerID:         42,
		Status:          domain.StatusPending,
		DeliveryDate:    time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		DeliveryHour:    "12:30",
		DeliveryAddress: "123 Main St",
		PersonCount:     20,
		MenuPrice:       15.50,
		TotalPrice:      310.00,
	})
	require.NoError(t, err)

	// pending -> confirmed
	order, err := svc.Transition(ctx, orderID, domain.StatusConfirmed, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, order.Status)
	require.NotNil(t, order.ConfirmedAt)

	entries, err := historyRepo.ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// confirmed -> ready skips preparing and must be rejected with no trace.
	_, err = svc.Transition(ctx, orderID, domain.StatusReady, nil)
	_, ok := apperrors.IsInvalidTransitionError(err)
	require.True(t, ok, "expected InvalidTransitionError, got %v", err)

	entries, err = historyRepo.ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "rejected transition must not append history")

	reloaded, err := orderRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, reloaded.Status)

	// The rest of the happy path.
	for _, next := range []domain.Status{
		domain.StatusPreparing, domain.StatusReady,
		domain.StatusDelivering, domain.StatusDelivered,
	} {
		order, err = svc.Transition(ctx, orderID, next, nil)
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, order.Status)
	}

	require.NotNil(t, order.DeliveredAt)

	// Replay the audit trail from pending; it must land on delivered.
	entries, err = historyRepo.ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	current := domain.StatusPending
	for i, entry := range entries {
		require.Equal(t, current, entry.OldStatus, "entry %d breaks the chain", i)
		current = entry.NewStatus
	}
	assert.Equal(t, domain.StatusDelivered, current)

	stored, err := orderRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, current, stored.Status, "replayed history must match stored status")

	// delivered is terminal.
	_, err = svc.Transition(ctx, orderID, domain.StatusCancelled, nil)
	_, ok = apperrors.IsInvalidTransitionError(err)
	assert.True(t, ok)
}

func TestStatusService_CancelIsAudited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	orderRepo := repository.NewMySQLOrderRepository(db)
	historyRepo := repository.NewMySQLStatusHistoryRepository(db)
	txManager := mysql.NewTxManager(db, 5*time.Second)
	svc := NewStatusService(txManager, orderRepo, historyRepo, NewLogStatusNotifier(zap.NewNop()), zap.NewNop())

	orderID, err := orderRepo.Insert(ctx, &domain.Order{
		OrderNumber:     "CAT-20250615-LIFE02",
		OwnerID:         42,
		Status:          domain.StatusPending,
		DeliveryDate:    time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		DeliveryHour:    "18:00",
		DeliveryAddress: "5 Side St",
		PersonCount:     8,
		MenuPrice:       22.00,
		TotalPrice:      176.00,
	})
	require.NoError(t, err)

	reason := "double booking"
	order, err := svc.Transition(ctx, orderID, domain.StatusCancelled, &reason)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
	require.NotNil(t, order.CancelledAt)

	entries, err := historyRepo.ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.StatusPending, entries[0].OldStatus)
	assert.Equal(t, domain.StatusCancelled, entries[0].NewStatus)
	require.NotNil(t, entries[0].Notes)
	assert.Equal(t, "double booking", *entries[0].Notes)

	stored, err := orderRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, stored.CancellationReason)
	assert.Equal(t, "double booking", *stored.CancellationReason)
}

// Two racing transitions on one order: the row lock serializes them, and the
// loser re-validates against the committed status instead of the stale one.
func TestStatusService_ConcurrentTransitionsOneWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	orderRepo := repository.NewMySQLOrderRepository(db)
	historyRepo := repository.NewMySQLStatusHistoryRepository(db)
	txManager := mysql.NewTxManager(db, 5*time.Second)
	svc := NewStatusService(txManager, orderRepo, historyRepo, NewLogStatusNotifier(zap.NewNop()), zap.NewNop())

	orderID, err := orderRepo.Insert(ctx, &domain.Order{
		OrderNumber:     "CAT-20250615-RACE01",
		OwnerID:         42,
		Status:          domain.StatusPending,
		DeliveryDate:    time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		DeliveryHour:    "12:30",
		DeliveryAddress: "123 Main St",
		PersonCount:     10,
		MenuPrice:       12.00,
		TotalPrice:      120.00,
	})
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transition(ctx, orderID, domain.StatusConfirmed, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if _, ok := apperrors.IsInvalidTransitionError(err); ok {
			rejected++
			continue
		}
		t.Fatalf("unexpected error from concurrent transition: %v", err)
	}
	assert.Equal(t, 1, succeeded, "exactly one transition should commit")
	assert.Equal(t, 1, rejected, "the loser should be rejected against the committed status")

	stored, err := orderRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	entries, err := historyRepo.ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the winning transition should leave a history row")
}

// A staff transition closes the cancel window; the engine's check on the
// locked row rejects the cancellation even though preparing->cancelled is a
// legal edge in the transition table.
func TestStatusService_CancelRejectedAfterWindowCloses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	ctx := context.Background()
	orderRepo := repository.NewMySQLOrderRepository(db)
	historyRepo := repository.NewMySQLStatusHistoryRepository(db)
	txManager := mysql.NewTxManager(db, 5*time.Second)
	svc := NewStatusService(txManager, orderRepo, historyRepo, NewLogStatusNotifier(zap.NewNop()), zap.NewNop())

	orderID, err := orderRepo.Insert(ctx, &domain.Order{
		OrderNumber:     "CAT-20250615-WIND01",
		OwnerID:         42,
		Status:          domain.StatusPending,
		DeliveryDate:    time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		DeliveryHour:    "12:30",
		DeliveryAddress: "123 Main St",
		PersonCount:     10,
		MenuPrice:       12.00,
		TotalPrice:      120.00,
	})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, orderID, domain.StatusConfirmed, nil)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, orderID, domain.StatusPreparing, nil)
	require.NoError(t, err)

	reason := "changed plans"
	_, err = svc.Cancel(ctx, orderID, &reason)

	nee, ok := apperrors.IsNotEditableError(err)
	require.True(t, ok, "expected NotEditableError, got %v", err)
	assert.Equal(t, "preparing", nee.Status)

	stored, err := orderRepo.FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, stored.Status)
	assert.Nil(t, stored.CancelledAt)

	entries, err := historyRepo.ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "the rejected cancel must not add a history row")
}
