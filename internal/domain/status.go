package domain

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusPreparing  Status = "preparing"
	StatusReady      Status = "ready"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// validNext is the full transition table of the order state machine.
// delivered and cancelled are terminal and have no outgoing edges.
var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:  {StatusPreparing: true, StatusCancelled: true},
	StatusPreparing:  {StatusReady: true, StatusCancelled: true},
	StatusReady:      {StatusDelivering: true},
	StatusDelivering: {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s Status) IsValid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether the state machine has an edge from -> to.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// IsTerminal reports whether the status has no outgoing edges.
func (s Status) IsTerminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

// IsEditable reports whether non-status order fields may still be changed.
// The same window gates cancellation.
func (s Status) IsEditable() bool {
	return s == StatusPending || s == StatusConfirmed
}
