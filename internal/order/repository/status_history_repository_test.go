package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catering/internal/domain"
	"catering/internal/testutil"
)

func TestNewMySQLStatusHistoryRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLStatusHistoryRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestStatusHistoryRepository_InsertAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	orderRepo := NewMySQLOrderRepository(db)
	historyRepo := NewMySQLStatusHistoryRepository(db)
	ctx := context.Background()

	orderID, err := orderRepo.Insert(ctx, testOrder("CAT-20250615-H00001", 42))
	require.NoError(t, err)

	notes := "called the client"
	base := time.Now().UTC().Truncate(time.Microsecond)

	edges := []domain.StatusHistoryEntry{
		{OrderID: orderID, OldStatus: domain.StatusPending, NewStatus: domain.StatusConfirmed, Notes: &notes, ChangedAt: base},
		{OrderID: orderID, OldStatus: domain.StatusConfirmed, NewStatus: domain.StatusPreparing, ChangedAt: base.Add(time.Minute)},
		{OrderID: orderID, OldStatus: domain.StatusPreparing, NewStatus: domain.StatusReady, ChangedAt: base.Add(2 * time.Minute)},
	}

	for _, entry := range edges {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)

		id, err := historyRepo.Insert(ctx, tx, entry)
		require.NoError(t, err)
		require.NotZero(t, id)
		require.NoError(t, tx.Commit())
	}

	entries, err := historyRepo.ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Ascending by change time, forming a replayable chain.
	current := domain.StatusPending
	for i, entry := range entries {
		assert.Equal(t, current, entry.OldStatus, "entry %d breaks the chain", i)
		current = entry.NewStatus
		if i > 0 {
			assert.True(t, !entry.ChangedAt.Before(entries[i-1].ChangedAt))
		}
	}
	assert.Equal(t, domain.StatusReady, current)

	require.NotNil(t, entries[0].Notes)
	assert.Equal(t, "called the client", *entries[0].Notes)
	assert.Nil(t, entries[1].Notes)
}

func TestStatusHistoryRepository_ListByOrderID_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	historyRepo := NewMySQLStatusHistoryRepository(db)

	entries, err := historyRepo.ListByOrderID(context.Background(), 9999)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
