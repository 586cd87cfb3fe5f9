package dto

import "time"

type OrderResponse struct {
	ID                  uint       `json:"id"`
	OrderNumber         string     `json:"orderNumber"`
	OwnerID             uint       `json:"ownerId"`
	Status              string     `json:"status"`
	DeliveryDate        string     `json:"deliveryDate"`
	DeliveryHour        string     `json:"deliveryHour"`
	DeliveryAddress     string     `json:"deliveryAddress"`
	PersonCount         int        `json:"personCount"`
	MenuPrice           float64    `json:"menuPrice"`
	TotalPrice          float64    `json:"totalPrice"`
	SpecialInstructions *string    `json:"specialInstructions,omitempty"`
	CancellationReason  *string    `json:"cancellationReason,omitempty"`
	ConfirmedAt         *time.Time `json:"confirmedAt,omitempty"`
	DeliveredAt         *time.Time `json:"deliveredAt,omitempty"`
	CancelledAt         *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type OrderListResponse struct {
	Items  []OrderResponse `json:"items"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

type StatusHistoryEntryResponse struct {
	ID        uint      `json:"id"`
	OrderID   uint      `json:"orderId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Notes     *string   `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

type StatusHistoryResponse struct {
	OrderID uint                         `json:"orderId"`
	Entries []StatusHistoryEntryResponse `json:"entries"`
}
