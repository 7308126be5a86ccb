package assignment

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// Domain errors for assignment operations.
var (
	// ErrAssignmentIsNotConstructed is returned when using an improperly
	// initialized DeliveryAssignment.
	ErrAssignmentIsNotConstructed = errors.New(
		"DeliveryAssignment must be created via NewDeliveryAssignment constructor")
)

// PartnerLocation is the last position reported by the assigned partner.
// Location is high-frequency, low-stakes data: it is overwritten in place and
// never enters the order's status history.
type PartnerLocation struct {
	Point     kernel.GeoPoint
	UpdatedAt time.Time
}

// DeliveryAssignment links one order to one delivery partner and tracks the
// partner-side sub-states of fulfilling that order. At most one non-terminal
// assignment exists per order at any time; the store enforces that invariant,
// the aggregate enforces the sub-status machine.
//
// Business rules:
//   - accept and reject are only valid from assigned
//   - cancel is valid from assigned and accepted
//   - only the assigned partner may act on the assignment
//   - each accepted sub-status transition stamps its timestamp exactly once
type DeliveryAssignment struct {
	id        kernel.UUID
	orderID   kernel.UUID
	partnerID kernel.UUID

	status       Status
	rejectReason string

	assignedAt  time.Time
	acceptedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time

	lastLocation *PartnerLocation

	version int64

	guard guard.ConstructorGuard
}

// NewDeliveryAssignment creates an assignment in the assigned state.
// It records which partner was proposed; the partner has not yet responded.
func NewDeliveryAssignment(id, orderID, partnerID kernel.UUID, now time.Time) (*DeliveryAssignment, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		partnerID.Validate(),
	); err != nil {
		return nil, err
	}

	return &DeliveryAssignment{
		id:         id,
		orderID:    orderID,
		partnerID:  partnerID,
		status:     StatusAssigned,
		assignedAt: now,
		version:    1,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// RestoreDeliveryAssignment reconstructs an assignment from persistent storage.
func RestoreDeliveryAssignment(
	id, orderID, partnerID kernel.UUID,
	status Status,
	rejectReason string,
	assignedAt time.Time,
	acceptedAt, pickedUpAt, deliveredAt *time.Time,
	lastLocation *PartnerLocation,
	version int64,
) (*DeliveryAssignment, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		partnerID.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	return &DeliveryAssignment{
		id:           id,
		orderID:      orderID,
		partnerID:    partnerID,
		status:       status,
		rejectReason: rejectReason,
		assignedAt:   assignedAt,
		acceptedAt:   acceptedAt,
		pickedUpAt:   pickedUpAt,
		deliveredAt:  deliveredAt,
		lastLocation: lastLocation,
		version:      version,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the assignment was properly constructed.
func (a *DeliveryAssignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

// IsEqual compares two assignments by their unique identifiers.
func (a *DeliveryAssignment) IsEqual(other *DeliveryAssignment) bool {
	return other != nil && a.id.IsEqual(other.id)
}

// ID returns the assignment's unique identifier.
func (a *DeliveryAssignment) ID() kernel.UUID {
	return a.id
}

// OrderID returns the reference of the order being delivered.
func (a *DeliveryAssignment) OrderID() kernel.UUID {
	return a.orderID
}

// PartnerID returns the reference of the assigned delivery partner.
func (a *DeliveryAssignment) PartnerID() kernel.UUID {
	return a.partnerID
}

// Status returns the current sub-status of the assignment.
func (a *DeliveryAssignment) Status() Status {
	return a.status
}

// RejectReason returns the reason given on rejection, if any.
func (a *DeliveryAssignment) RejectReason() string {
	return a.rejectReason
}

// AssignedAt returns when the partner was proposed.
func (a *DeliveryAssignment) AssignedAt() time.Time {
	return a.assignedAt
}

// AcceptedAt returns when the partner accepted, or nil.
func (a *DeliveryAssignment) AcceptedAt() *time.Time {
	return a.acceptedAt
}

// PickedUpAt returns when the order was collected, or nil.
func (a *DeliveryAssignment) PickedUpAt() *time.Time {
	return a.pickedUpAt
}

// DeliveredAt returns when the order was handed over, or nil.
func (a *DeliveryAssignment) DeliveredAt() *time.Time {
	return a.deliveredAt
}

// LastLocation returns the partner's last reported position, or nil if the
// partner has not reported yet.
func (a *DeliveryAssignment) LastLocation() *PartnerLocation {
	return a.lastLocation
}

// Version returns the optimistic-concurrency version.
func (a *DeliveryAssignment) Version() int64 {
	return a.version
}

// Accept commits the partner to the delivery. Only the assigned partner may
// accept, and only from the assigned state.
func (a *DeliveryAssignment) Accept(partnerID kernel.UUID, now time.Time) error {
	if err := a.authorize(partnerID); err != nil {
		return err
	}
	if err := a.status.CanTransitionTo(StatusAccepted); err != nil {
		return err
	}

	a.status = StatusAccepted
	a.acceptedAt = &now
	a.version++
	return nil
}

// Reject declines the assignment. Only the assigned partner may reject, and
// only from the assigned state; the caller requeues assignment with this
// partner excluded.
func (a *DeliveryAssignment) Reject(partnerID kernel.UUID, reason string, now time.Time) error {
	if err := a.authorize(partnerID); err != nil {
		return err
	}
	if err := a.status.CanTransitionTo(StatusRejected); err != nil {
		return err
	}

	a.status = StatusRejected
	a.rejectReason = reason
	a.version++
	return nil
}

// MarkPickedUp records that the partner collected the order. Only valid from
// accepted, after pickup verification has passed.
func (a *DeliveryAssignment) MarkPickedUp(partnerID kernel.UUID, now time.Time) error {
	if err := a.authorize(partnerID); err != nil {
		return err
	}
	if err := a.status.CanTransitionTo(StatusPickedUp); err != nil {
		return err
	}

	a.status = StatusPickedUp
	a.pickedUpAt = &now
	a.version++
	return nil
}

// MarkDelivered records the handover to the customer. Only valid from
// picked_up, after delivery verification has passed.
func (a *DeliveryAssignment) MarkDelivered(partnerID kernel.UUID, now time.Time) error {
	if err := a.authorize(partnerID); err != nil {
		return err
	}
	if err := a.status.CanTransitionTo(StatusDelivered); err != nil {
		return err
	}

	a.status = StatusDelivered
	a.deliveredAt = &now
	a.version++
	return nil
}

// Cancel withdraws the assignment before completion. Used for order
// cancellation and for acceptance timeouts treated as implicit rejection.
func (a *DeliveryAssignment) Cancel(now time.Time) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := a.status.CanTransitionTo(StatusCancelled); err != nil {
		return err
	}

	a.status = StatusCancelled
	a.version++
	return nil
}

// ReportLocation overwrites the partner's last known position. Authorized only
// for the assigned partner and only while the assignment is live.
func (a *DeliveryAssignment) ReportLocation(partnerID kernel.UUID, point kernel.GeoPoint, now time.Time) error {
	if err := a.authorize(partnerID); err != nil {
		return err
	}
	if err := point.Validate(); err != nil {
		return err
	}
	if a.status.IsTerminal() {
		return errs.NewInvalidStateError("assignment status", a.status.String())
	}

	a.lastLocation = &PartnerLocation{Point: point, UpdatedAt: now}
	a.version++
	return nil
}

func (a *DeliveryAssignment) authorize(partnerID kernel.UUID) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := partnerID.Validate(); err != nil {
		return err
	}
	if !a.partnerID.IsEqual(partnerID) {
		return errs.NewAuthorizationError("delivery_partner", "act on another partner's assignment")
	}
	return nil
}
