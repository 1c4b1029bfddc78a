// Package orders holds the order lifecycle rules: statuses, legal
// transitions, payment modes and server-side pricing.
package orders

import "fmt"

type Status string

const (
	StatusPending        Status = "Pending"
	StatusDispatched     Status = "Dispatched"
	StatusOutForDelivery Status = "Out for delivery"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusDispatched,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

var transitions = map[Status][]Status{
	StatusPending:        {StatusDispatched, StatusCancelled},
	StatusDispatched:     {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      nil,
	StatusCancelled:      nil,
}

// ParseStatus accepts the exact names above.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Next returns the statuses reachable from s in one step.
func (s Status) Next() []Status {
	return append([]Status(nil), transitions[s]...)
}

// CanTransition reports whether from may move to to. Staying on the
// same status is allowed and treated as a no-op by callers.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError describes a move the lifecycle forbids.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// CheckTransition returns a *TransitionError when from cannot move to to.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// RestoresStock reports whether entering s gives reserved stock back.
func RestoresStock(s Status) bool {
	return s == StatusCancelled
}
