package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions to ensure orders
// follow the correct business workflow.
//
// State transitions:
//
//	Pending ──> Confirmed ──> Preparing ──> ReadyForPickup ──> OutForDelivery ──> Delivered
//	    │            │             │                │                  │
//	    └────────────┴─────────────┴────────────────┴──────────────────┘
//	                 (Cancelled / Rejected / Failed from any non-terminal state)
//
// Pending is the sole initial state. Delivered, Cancelled, Rejected and Failed
// are terminal: no transition may act on an order already in one of them.
//
// Status is a value object that validates state transitions and provides
// string representations for persistence and the wire contract.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	StatusUnknown Status = iota

	// StatusPending is the initial status when an order is first created.
	StatusPending

	// StatusConfirmed indicates the restaurant has accepted the order.
	StatusConfirmed

	// StatusPreparing indicates the kitchen has started preparation.
	StatusPreparing

	// StatusReadyForPickup indicates the order is packed and waiting for handoff.
	StatusReadyForPickup

	// StatusOutForDelivery indicates the delivery partner has picked the order up.
	StatusOutForDelivery

	// StatusDelivered indicates the order reached the customer. Terminal.
	StatusDelivered

	// StatusCancelled indicates the customer or an admin cancelled the order. Terminal.
	StatusCancelled

	// StatusRejected indicates the restaurant declined the order. Terminal.
	StatusRejected

	// StatusFailed indicates the order could not be fulfilled. Terminal.
	StatusFailed
)

// getStatusStrings returns a map of Status values to their wire representations.
// The strings are the interop contract with clients and persisted documents.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:        "unknown",
		StatusPending:        "pending",
		StatusConfirmed:      "confirmed",
		StatusPreparing:      "preparing",
		StatusReadyForPickup: "ready_for_pickup",
		StatusOutForDelivery: "out_for_delivery",
		StatusDelivered:      "delivered",
		StatusCancelled:      "cancelled",
		StatusRejected:       "rejected",
		StatusFailed:         "failed",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
func getValidStatusStrings() map[Status]string {
	m := getStatusStrings()
	delete(m, StatusUnknown)
	return m
}

// getHappyPathSuccessors returns the forward transition graph: for each
// non-terminal status, the single next status on the fulfilment path.
// Terminal escapes (Cancelled, Rejected, Failed) are handled separately.
func getHappyPathSuccessors() map[Status]Status {
	return map[Status]Status{
		StatusPending:        StatusConfirmed,
		StatusConfirmed:      StatusPreparing,
		StatusPreparing:      StatusReadyForPickup,
		StatusReadyForPickup: StatusOutForDelivery,
		StatusOutForDelivery: StatusDelivered,
	}
}

// StatusFromString parses a wire representation into a Status.
// Returns an error for unknown strings.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// StatusUnknown (0) and any out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status.
// Implements fmt.Stringer and is safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status is a final state.
// Terminal orders accept no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRejected, StatusFailed:
		return true
	default:
		return false
	}
}

// IsEscape reports whether the status is a terminal escape reachable from any
// non-terminal state (as opposed to Delivered, which is only reachable from
// OutForDelivery).
func (s Status) IsEscape() bool {
	switch s {
	case StatusCancelled, StatusRejected, StatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks whether the state graph permits moving from the
// current status to target. The role table is a separate gate checked by
// RoleAllowsTarget; both must pass for a transition to be accepted.
//
// Rules:
//   - no transition out of a terminal status
//   - escapes (Cancelled/Rejected/Failed) are reachable from any non-terminal state
//   - otherwise target must be the next status on the fulfilment path
func (s Status) CanTransitionTo(target Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	if s.IsTerminal() {
		return errs.NewInvalidStateError("order status", s.String())
	}

	if target.IsEscape() {
		return nil
	}

	if next, ok := getHappyPathSuccessors()[s]; ok && next == target {
		return nil
	}

	return errs.NewInvalidStateErrorWithCause("order status", s.String(),
		fmt.Errorf("cannot move to %s", target))
}
