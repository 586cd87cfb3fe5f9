package dto

import (
	"time"

	"catering/internal/domain"
)

// CreateOrderSpec carries the content fields for a new order. Identity,
// order number, status and timestamps are assigned by the core.
type CreateOrderSpec struct {
	DeliveryDate        time.Time
	DeliveryHour        string
	DeliveryAddress     string
	PersonCount         int
	MenuPrice           float64
	SpecialInstructions *string
}

// UpdateOrderDetails is an explicit patch of optional content fields.
// Nil means "leave unchanged". Status and timestamps are never touched
// by this path.
type UpdateOrderDetails struct {
	DeliveryDate        *time.Time
	DeliveryHour        *string
	DeliveryAddress     *string
	PersonCount         *int
	MenuPrice           *float64
	SpecialInstructions *string
}

// IsEmpty reports whether the patch changes nothing.
func (u UpdateOrderDetails) IsEmpty() bool {
	return u.DeliveryDate == nil &&
		u.DeliveryHour == nil &&
		u.DeliveryAddress == nil &&
		u.PersonCount == nil &&
		u.MenuPrice == nil &&
		u.SpecialInstructions == nil
}

type ListOrdersFilter struct {
	Status  *domain.Status
	OwnerID *uint
}

type PageRequest struct {
	Offset int
	Limit  int
}

type OrderPage struct {
	Items  []domain.Order
	Total  int
	Offset int
	Limit  int
}
