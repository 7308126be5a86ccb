package order

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder factory method.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrAddressRequired is returned when a delivery-mode order has no delivery address.
	ErrAddressRequired = errs.NewValueIsRequiredError("delivery address")

	// ErrItemsRequired is returned when an order is created without line items.
	ErrItemsRequired = errs.NewValueIsRequiredError("order items")
)

// Timestamps holds the side-effect timestamps derived from accepted status
// transitions. Each field is set exactly once, when the corresponding
// transition commits, and never cleared.
type Timestamps struct {
	ConfirmedAt          *time.Time
	PreparationStartedAt *time.Time
	ReadyForPickupAt     *time.Time
	OutForDeliveryAt     *time.Time
	DeliveredAt          *time.Time
	CancelledAt          *time.Time
}

// Order is the aggregate root coordinating one food order from creation to a
// terminal state. It owns the line items, the money breakdown, the status state
// machine and the derived timestamps; the status-event history lives alongside
// it and the cached status always matches the latest event.
//
// Order follows these invariants:
//   - total always equals subtotal + tax + deliveryFee + platformFee
//   - subtotal always equals the sum of the line totals
//   - status only moves along the transition graph, never backward into Pending
//   - a delivery-mode order always carries a delivery address
//   - version increases on every accepted mutation (optimistic concurrency)
//
// The struct uses private fields to ensure encapsulation and maintains its
// invariants through validated methods. Use NewOrder to create instances and
// RestoreOrder to rebuild them from persistence.
type Order struct {
	id           kernel.UUID
	customerID   kernel.UUID
	restaurantID kernel.UUID

	items       []LineItem
	subtotal    kernel.Money
	tax         kernel.Money
	deliveryFee kernel.Money
	platformFee kernel.Money
	total       kernel.Money

	status       Status
	deliveryType DeliveryType
	address      *Address

	deliveryPartnerID *kernel.UUID

	payment    Payment
	groupOrder *GroupOrder

	timestamps Timestamps
	createdAt  time.Time
	updatedAt  time.Time

	// version supports compare-and-swap updates in the store; two concurrent
	// transition proposals for the same order cannot both win against a stale read.
	version int64

	isConstructed bool
}

// NewOrder creates an Order in Pending status with a validated money breakdown.
// Subtotal is computed from the line items; total is the sum of subtotal, tax,
// delivery fee and platform fee. A delivery-mode order requires an address.
//
// The payment intent is assumed already validated by the payment boundary;
// the order only records it.
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []LineItem,
	tax kernel.Money,
	deliveryFee kernel.Money,
	platformFee kernel.Money,
	deliveryType DeliveryType,
	address *Address,
	payment Payment,
	groupOrder *GroupOrder,
	now time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		customerID.Validate(),
		restaurantID.Validate(),
		deliveryType.Validate(),
	); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrItemsRequired
	}
	subtotal := kernel.ZeroMoney()
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(item.LineTotal())
	}

	if deliveryType == DeliveryTypeDelivery && address == nil {
		return nil, ErrAddressRequired
	}

	order := &Order{
		id:            id,
		customerID:    customerID,
		restaurantID:  restaurantID,
		items:         append([]LineItem(nil), items...),
		subtotal:      subtotal,
		tax:           tax,
		deliveryFee:   deliveryFee,
		platformFee:   platformFee,
		total:         subtotal.Add(tax).Add(deliveryFee).Add(platformFee),
		status:        StatusPending,
		deliveryType:  deliveryType,
		address:       address,
		payment:       payment,
		groupOrder:    groupOrder,
		createdAt:     now,
		updatedAt:     now,
		version:       1,
		isConstructed: true,
	}

	return order, nil
}

// RestoreOrder reconstructs an Order from persistence without re-running the
// creation rules. The stored money breakdown and status are trusted as the
// committed state; only structural validity is checked.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []LineItem,
	subtotal kernel.Money,
	tax kernel.Money,
	deliveryFee kernel.Money,
	platformFee kernel.Money,
	total kernel.Money,
	status Status,
	deliveryType DeliveryType,
	address *Address,
	deliveryPartnerID *kernel.UUID,
	payment Payment,
	groupOrder *GroupOrder,
	timestamps Timestamps,
	createdAt time.Time,
	updatedAt time.Time,
	version int64,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		customerID.Validate(),
		restaurantID.Validate(),
		status.Validate(),
		deliveryType.Validate(),
	); err != nil {
		return nil, err
	}

	return &Order{
		id:                id,
		customerID:        customerID,
		restaurantID:      restaurantID,
		items:             append([]LineItem(nil), items...),
		subtotal:          subtotal,
		tax:               tax,
		deliveryFee:       deliveryFee,
		platformFee:       platformFee,
		total:             total,
		status:            status,
		deliveryType:      deliveryType,
		address:           address,
		deliveryPartnerID: deliveryPartnerID,
		payment:           payment,
		groupOrder:        groupOrder,
		timestamps:        timestamps,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
		version:           version,
		isConstructed:     true,
	}, nil
}

// Validate ensures the Order instance was properly constructed through
// NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the ordering customer's reference.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// RestaurantID returns the fulfilling restaurant's reference.
func (o *Order) RestaurantID() kernel.UUID {
	return o.restaurantID
}

// Items returns a copy of the order's line items.
func (o *Order) Items() []LineItem {
	return append([]LineItem(nil), o.items...)
}

// Subtotal returns the sum of the line totals.
func (o *Order) Subtotal() kernel.Money {
	return o.subtotal
}

// Tax returns the tax amount.
func (o *Order) Tax() kernel.Money {
	return o.tax
}

// DeliveryFee returns the delivery fee.
func (o *Order) DeliveryFee() kernel.Money {
	return o.deliveryFee
}

// PlatformFee returns the platform fee.
func (o *Order) PlatformFee() kernel.Money {
	return o.platformFee
}

// Total returns the grand total. Always equals
// subtotal + tax + delivery fee + platform fee.
func (o *Order) Total() kernel.Money {
	return o.total
}

// Status returns the current (cached) status of the order.
func (o *Order) Status() Status {
	return o.status
}

// DeliveryType returns delivery or pickup mode.
func (o *Order) DeliveryType() DeliveryType {
	return o.deliveryType
}

// Address returns the delivery address, or nil for pickup orders.
func (o *Order) Address() *Address {
	return o.address
}

// DeliveryPartnerID returns the assigned delivery partner's reference.
// Returns nil if no partner is assigned.
func (o *Order) DeliveryPartnerID() *kernel.UUID {
	return o.deliveryPartnerID
}

// Payment returns the order's payment record.
func (o *Order) Payment() Payment {
	return o.payment
}

// GroupOrder returns the optional group-order metadata.
func (o *Order) GroupOrder() *GroupOrder {
	return o.groupOrder
}

// Timestamps returns the derived side-effect timestamps.
func (o *Order) Timestamps() Timestamps {
	return o.timestamps
}

// CreatedAt returns the creation time.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the last mutation time.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Version returns the optimistic-concurrency version.
func (o *Order) Version() int64 {
	return o.version
}

// ProposeTransition validates and applies one status transition.
//
// The proposal passes two independent gates:
//  1. the role table: the actor's role must list target among its allowed
//     target statuses, otherwise an AuthorizationError is returned;
//  2. the state graph: target must be reachable from the current status
//     (Status.CanTransitionTo), otherwise an InvalidStateError is returned.
//
// Re-proposing the order's current status is an idempotent no-op: the method
// returns (nil, nil) and nothing changes.
//
// On success the order's cached status, the matching side-effect timestamp,
// updatedAt and version are updated together, and the immutable StatusEvent
// recording the transition is returned. The caller persists the order and the
// event in one atomic unit.
func (o *Order) ProposeTransition(
	target Status,
	actor kernel.UUID,
	role Role,
	reason string,
	metadata map[string]any,
	now time.Time,
) (*StatusEvent, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := errors.Join(actor.Validate(), role.Validate(), target.Validate()); err != nil {
		return nil, err
	}

	if !role.AllowsTarget(target) {
		return nil, errs.NewAuthorizationError(role.String(),
			fmt.Sprintf("set status %s", target))
	}

	// Terminal orders refuse every proposal, including a re-propose of the
	// terminal status itself. The idempotent no-op below is only for
	// duplicate submissions on a live order.
	if o.status.IsTerminal() {
		return nil, errs.NewInvalidStateError("order status", o.status.String())
	}

	if o.status == target {
		return nil, nil
	}

	if err := o.status.CanTransitionTo(target); err != nil {
		return nil, err
	}

	event, err := NewStatusEvent(kernel.NewUUID(), o.id, target, actor, role, reason, metadata, now)
	if err != nil {
		return nil, err
	}

	o.status = target
	o.applyTimestamp(target, now)
	o.touch(now)

	return event, nil
}

// AssignDeliveryPartner records the delivery partner working this order.
// Only valid for delivery-mode orders that are not terminal. Reassignment is
// allowed; the assignment workflow guarantees at most one active assignment.
func (o *Order) AssignDeliveryPartner(partnerID kernel.UUID, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := partnerID.Validate(); err != nil {
		return err
	}
	if o.deliveryType != DeliveryTypeDelivery {
		return errs.NewInvalidStateError("order delivery type", o.deliveryType.String())
	}
	if o.status.IsTerminal() {
		return errs.NewInvalidStateError("order status", o.status.String())
	}

	o.deliveryPartnerID = &partnerID
	o.touch(now)
	return nil
}

// MarkPaymentStatus updates the order's cached payment state as reported by
// the payment authority.
func (o *Order) MarkPaymentStatus(status PaymentStatus, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	payment, err := o.payment.WithStatus(status)
	if err != nil {
		return err
	}

	o.payment = payment
	o.touch(now)
	return nil
}

// CanBeWatchedBy reports whether the given actor may subscribe to this order's
// live topic. Customers must own the order (or participate in its group order),
// restaurant staff connect under their restaurant's identity, delivery partners
// must be the assigned partner, and admins may watch anything.
func (o *Order) CanBeWatchedBy(actor kernel.UUID, role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleCustomer:
		if o.customerID.IsEqual(actor) {
			return true
		}
		return o.groupOrder != nil && o.groupOrder.IsParticipant(actor)
	case RoleRestaurant:
		return o.restaurantID.IsEqual(actor)
	case RoleDeliveryPartner:
		return o.deliveryPartnerID != nil && o.deliveryPartnerID.IsEqual(actor)
	default:
		return false
	}
}

// applyTimestamp sets the side-effect timestamp derived from the new status.
func (o *Order) applyTimestamp(status Status, now time.Time) {
	switch status {
	case StatusConfirmed:
		o.timestamps.ConfirmedAt = &now
	case StatusPreparing:
		o.timestamps.PreparationStartedAt = &now
	case StatusReadyForPickup:
		o.timestamps.ReadyForPickupAt = &now
	case StatusOutForDelivery:
		o.timestamps.OutForDeliveryAt = &now
	case StatusDelivered:
		o.timestamps.DeliveredAt = &now
	case StatusCancelled, StatusRejected, StatusFailed:
		o.timestamps.CancelledAt = &now
	default:
	}
}

func (o *Order) touch(now time.Time) {
	o.updatedAt = now
	o.version++
}
