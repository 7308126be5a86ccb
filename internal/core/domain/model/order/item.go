package order

import (
	"errors"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// ErrLineItemIsNotConstructed is returned when using an improperly initialized LineItem.
var ErrLineItemIsNotConstructed = errors.New("LineItem must be created via NewLineItem constructor")

// LineItem is one ordered menu item with its quantity and unit price.
// The line total is always quantity × unit price; it is computed, never stored.
type LineItem struct {
	itemID    kernel.UUID
	name      string
	quantity  int
	unitPrice kernel.Money
	guard     guard.ConstructorGuard
}

// NewLineItem creates a validated line item.
// Quantity must be positive; name must be non-empty.
func NewLineItem(itemID kernel.UUID, name string, quantity int, unitPrice kernel.Money) (LineItem, error) {
	if err := itemID.Validate(); err != nil {
		return LineItem{}, err
	}
	if name == "" {
		return LineItem{}, errs.NewValueIsRequiredError("item name")
	}
	if quantity <= 0 {
		return LineItem{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}

	return LineItem{
		itemID:    itemID,
		name:      name,
		quantity:  quantity,
		unitPrice: unitPrice,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the LineItem was created through NewLineItem.
func (i LineItem) Validate() error {
	return i.guard.Validate(ErrLineItemIsNotConstructed)
}

// ItemID returns the referenced menu item's identifier.
func (i LineItem) ItemID() kernel.UUID {
	return i.itemID
}

// Name returns the item's display name.
func (i LineItem) Name() string {
	return i.name
}

// Quantity returns the ordered quantity.
func (i LineItem) Quantity() int {
	return i.quantity
}

// UnitPrice returns the per-unit price.
func (i LineItem) UnitPrice() kernel.Money {
	return i.unitPrice
}

// LineTotal returns quantity × unit price.
func (i LineItem) LineTotal() kernel.Money {
	total, _ := i.unitPrice.MulQty(i.quantity) // quantity validated positive at construction
	return total
}
