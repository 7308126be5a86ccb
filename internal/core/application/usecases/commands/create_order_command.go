package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrOrderItemsAreRequired = errors.New("at least one line item is required")
)

// CreateOrderCommand represents a request to admit a new order into the
// system. Admission is gated by the restaurant's subscription quota before
// anything is persisted.
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	customerID   kernel.UUID
	restaurantID kernel.UUID
	items        []order.LineItem
	tax          kernel.Money
	deliveryFee  kernel.Money
	platformFee  kernel.Money
	deliveryType order.DeliveryType
	address      *order.Address
	payment      order.Payment
	groupOrder   *order.GroupOrder

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to admit a new order.
// Validates identities, the delivery mode and that at least one line item is
// present; the money breakdown itself is validated by the aggregate.
func NewCreateOrderCommand(
	orderID, customerID, restaurantID kernel.UUID,
	items []order.LineItem,
	tax, deliveryFee, platformFee kernel.Money,
	deliveryType order.DeliveryType,
	address *order.Address,
	payment order.Payment,
	groupOrder *order.GroupOrder,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setRestaurantID(restaurantID),
		cmd.setItems(items),
		deliveryType.Validate(),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	cmd.tax = tax
	cmd.deliveryFee = deliveryFee
	cmd.platformFee = platformFee
	cmd.deliveryType = deliveryType
	cmd.address = address
	cmd.payment = payment
	cmd.groupOrder = groupOrder

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier for the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the ordering customer's reference.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// RestaurantID returns the fulfilling restaurant's reference.
func (c CreateOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// Items returns the order's line items.
func (c CreateOrderCommand) Items() []order.LineItem {
	return c.items
}

// Tax returns the tax amount.
func (c CreateOrderCommand) Tax() kernel.Money {
	return c.tax
}

// DeliveryFee returns the delivery fee.
func (c CreateOrderCommand) DeliveryFee() kernel.Money {
	return c.deliveryFee
}

// PlatformFee returns the platform fee.
func (c CreateOrderCommand) PlatformFee() kernel.Money {
	return c.platformFee
}

// DeliveryType returns delivery or pickup mode.
func (c CreateOrderCommand) DeliveryType() order.DeliveryType {
	return c.deliveryType
}

// Address returns the delivery address, or nil for pickup.
func (c CreateOrderCommand) Address() *order.Address {
	return c.address
}

// Payment returns the payment record for the order.
func (c CreateOrderCommand) Payment() order.Payment {
	return c.payment
}

// GroupOrder returns the optional group-order metadata.
func (c CreateOrderCommand) GroupOrder() *order.GroupOrder {
	return c.groupOrder
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}

	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	c.restaurantID = restaurantID
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.LineItem) error {
	if len(items) == 0 {
		return ErrOrderItemsAreRequired
	}

	c.items = items
	return nil
}
