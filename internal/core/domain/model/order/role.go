package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Role identifies the kind of actor proposing an order status transition.
type Role int

const (
	// RoleUnknown represents an invalid or undefined role.
	RoleUnknown Role = iota

	// RoleCustomer is the person who placed the order.
	RoleCustomer

	// RoleRestaurant is staff of the restaurant fulfilling the order.
	RoleRestaurant

	// RoleDeliveryPartner is the courier assigned to deliver the order.
	RoleDeliveryPartner

	// RoleAdmin is a platform operator.
	RoleAdmin
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:         "unknown",
		RoleCustomer:        "customer",
		RoleRestaurant:      "restaurant",
		RoleDeliveryPartner: "delivery_partner",
		RoleAdmin:           "admin",
	}
}

// roleTargets is the authorization rule as data: for each role, the set of
// statuses that role may propose as a transition target. The current-state
// graph is a separate gate (Status.CanTransitionTo); an admin may propose any
// valid target but is still bound by the graph.
func roleTargets() map[Role][]Status {
	return map[Role][]Status{
		RoleCustomer: {StatusCancelled},
		RoleRestaurant: {
			StatusConfirmed,
			StatusPreparing,
			StatusReadyForPickup,
			StatusRejected,
		},
		RoleDeliveryPartner: {
			StatusOutForDelivery,
			StatusDelivered,
		},
		RoleAdmin: {
			StatusConfirmed,
			StatusPreparing,
			StatusReadyForPickup,
			StatusOutForDelivery,
			StatusDelivered,
			StatusCancelled,
			StatusRejected,
			StatusFailed,
		},
	}
}

// RoleFromString parses a wire representation into a Role.
func RoleFromString(s string) (Role, error) {
	for role, str := range getRoleStrings() {
		if role != RoleUnknown && str == s {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role",
		fmt.Errorf("%q is not a valid role", s))
}

// Validate checks if the Role value is valid.
func (r Role) Validate() error {
	if _, ok := getRoleStrings()[r]; !ok || r == RoleUnknown {
		return errs.NewValueIsInvalidErrorWithCause("role",
			fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// String returns the wire representation of the role.
func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}

// AllowsTarget reports whether the role's row in the authorization table
// permits proposing the given target status.
func (r Role) AllowsTarget(target Status) bool {
	for _, allowed := range roleTargets()[r] {
		if allowed == target {
			return true
		}
	}
	return false
}
