package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catering/internal/domain"
	"catering/internal/errors"
)

func TestPolicy_CanAccess_StaffRoles(t *testing.T) {
	policy := NewPolicy()
	order := &domain.Order{ID: 1, OwnerID: 42}

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee} {
		requester := domain.Requester{ID: 999, Role: role}
		assert.True(t, policy.CanAccess(requester, order), "expected %s to access any order", role)
	}
}

func TestPolicy_CanAccess_OwnerCustomer(t *testing.T) {
	policy := NewPolicy()
	order := &domain.Order{ID: 1, OwnerID: 42}

	owner := domain.Requester{ID: 42, Role: domain.RoleCustomer}
	assert.True(t, policy.CanAccess(owner, order))
}

func TestPolicy_CanAccess_OtherCustomer(t *testing.T) {
	policy := NewPolicy()
	order := &domain.Order{ID: 1, OwnerID: 42}

	other := domain.Requester{ID: 43, Role: domain.RoleCustomer}
	assert.False(t, policy.CanAccess(other, order))
}

func TestPolicy_Authorize_ReturnsForbidden(t *testing.T) {
	policy := NewPolicy()
	order := &domain.Order{ID: 1, OwnerID: 42}

	err := policy.Authorize(domain.Requester{ID: 7, Role: domain.RoleCustomer}, order)
	assert.Error(t, err)

	fe, ok := errors.IsForbiddenError(err)
	assert.True(t, ok)
	assert.NotNil(t, fe)
}

func TestPolicy_Authorize_AllowsOwner(t *testing.T) {
	policy := NewPolicy()
	order := &domain.Order{ID: 1, OwnerID: 42}

	err := policy.Authorize(domain.Requester{ID: 42, Role: domain.RoleCustomer}, order)
	assert.NoError(t, err)
}
