package domain

import "time"

type Order struct {
	ID                  uint
	OrderNumber         string
	OwnerID             uint
	Status              Status
	DeliveryDate        time.Time
	DeliveryHour        string
	DeliveryAddress     string
	PersonCount         int
	MenuPrice           float64
	TotalPrice          float64
	SpecialInstructions *string
	CancellationReason  *string
	ConfirmedAt         *time.Time
	DeliveredAt         *time.Time
	CancelledAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// StatusHistoryEntry is one immutable audit record of a single status
// transition. Entries for an order, replayed ascending by ChangedAt starting
// from pending, reconstruct the order's current status.
type StatusHistoryEntry struct {
	ID        uint
	OrderID   uint
	OldStatus Status
	NewStatus Status
	Notes     *string
	ChangedAt time.Time
}
