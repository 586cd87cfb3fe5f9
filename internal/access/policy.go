package access

import (
	"catering/internal/domain"
	"catering/internal/errors"
)

// Policy is the single authorization decision point for order reads and
// writes. Staff roles may access any order; a customer only their own.
type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

func (p *Policy) CanAccess(requester domain.Requester, order *domain.Order) bool {
	if requester.Role.IsStaff() {
		return true
	}
	return order.OwnerID == requester.ID
}

// Authorize returns a ForbiddenError when the requester may not access the
// order. Callers invoke it after the order is known to exist, so NotFound
// is never masked by Forbidden.
func (p *Policy) Authorize(requester domain.Requester, order *domain.Order) error {
	if !p.CanAccess(requester, order) {
		return errors.NewForbiddenError("you do not have access to this order")
	}
	return nil
}
