package domain

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// Requester identifies the authenticated caller of an operation.
type Requester struct {
	ID   uint
	Role Role
}

// IsStaff reports whether the role grants unconditional access to any order.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleEmployee
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee, RoleCustomer:
		return true
	}
	return false
}
