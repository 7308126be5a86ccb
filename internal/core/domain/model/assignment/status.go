package assignment

import (
	"fmt"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// Status is the sub-status of a delivery assignment. It is a separate state
// machine from the order status; the two are linked only through OrderTargetFor.
type Status int

const (
	// StatusUnknown represents an invalid or undefined assignment status.
	StatusUnknown Status = iota

	// StatusAssigned means a partner has been proposed but has not responded.
	StatusAssigned

	// StatusAccepted means the partner committed to the delivery.
	StatusAccepted

	// StatusPickedUp means the partner collected the order from the restaurant.
	StatusPickedUp

	// StatusDelivered means the partner handed the order to the customer.
	StatusDelivered

	// StatusRejected means the partner declined the assignment.
	StatusRejected

	// StatusCancelled means the assignment was withdrawn before completion.
	StatusCancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:   "unknown",
		StatusAssigned:  "assigned",
		StatusAccepted:  "accepted",
		StatusPickedUp:  "picked_up",
		StatusDelivered: "delivered",
		StatusRejected:  "rejected",
		StatusCancelled: "cancelled",
	}
}

// getSuccessors returns the allowed next statuses for each live status.
func getSuccessors() map[Status][]Status {
	return map[Status][]Status{
		StatusAssigned: {StatusAccepted, StatusRejected, StatusCancelled},
		StatusAccepted: {StatusPickedUp, StatusCancelled},
		StatusPickedUp: {StatusDelivered},
	}
}

// StatusFromString parses a wire representation into a Status.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != StatusUnknown && str == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("assignment status",
		fmt.Errorf("%q is not a valid assignment status", s))
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok || s == StatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("assignment status",
			fmt.Errorf("%d is not a valid assignment status", s))
	}
	return nil
}

// String returns the wire representation of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status ends the assignment.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusRejected || s == StatusCancelled
}

// CanTransitionTo checks whether the assignment may move from s to target.
func (s Status) CanTransitionTo(target Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	for _, next := range getSuccessors()[s] {
		if next == target {
			return nil
		}
	}
	return errs.NewInvalidStateErrorWithCause("assignment status", s.String(),
		fmt.Errorf("cannot transition to %s", target))
}

// OrderTargetFor maps an assignment sub-status change to the order-status
// transition it triggers, if any. The two state machines stay separate; this
// is their only coupling point. Acceptance does not move the order status
// itself: it is surfaced by recording the partner on the order and
// broadcasting, since the order status set has no partner-confirmation member.
func OrderTargetFor(s Status) (order.Status, bool) {
	switch s {
	case StatusPickedUp:
		return order.StatusOutForDelivery, true
	case StatusDelivered:
		return order.StatusDelivered, true
	default:
		return order.StatusUnknown, false
	}
}
