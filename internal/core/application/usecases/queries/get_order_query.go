package queries

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves one order snapshot by its identifier.
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for a single order snapshot.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the requested order's identifier.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderItemResponse is one line item in the order snapshot.
type GetOrderItemResponse struct {
	ItemID    kernel.UUID
	Name      string
	Quantity  int
	UnitPrice int64
	LineTotal int64
}

// GetOrderQueryResponse is a read-model snapshot of one order: identity,
// status, money breakdown, payment state and the assigned partner if any.
// Amounts are in minor currency units.
type GetOrderQueryResponse struct {
	ID           kernel.UUID
	CustomerID   kernel.UUID
	RestaurantID kernel.UUID

	Status        string
	DeliveryType  string
	AddressLine   *string
	PaymentMethod string
	PaymentStatus string

	Subtotal    int64
	Tax         int64
	DeliveryFee int64
	PlatformFee int64
	Total       int64

	DeliveryPartnerID *kernel.UUID

	Items []GetOrderItemResponse

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}
