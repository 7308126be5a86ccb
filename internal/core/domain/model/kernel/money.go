package kernel

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Money represents a non-negative monetary amount in minor currency units
// (e.g. paise, cents). Money is an immutable value object; the zero value is a
// valid zero amount, so no constructor guard is needed.
//
// Arithmetic never produces a negative amount: operations that would go below
// zero return an error instead.
type Money struct {
	amount int64
}

// NewMoney creates a Money value from minor units.
// Returns an error for negative amounts.
func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d is negative", amount))
	}
	return Money{amount: amount}, nil
}

// ZeroMoney returns a zero amount.
func ZeroMoney() Money {
	return Money{}
}

// Amount returns the amount in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount + other.amount}
}

// MulQty returns the amount multiplied by a quantity.
// Returns an error for negative quantities.
func (m Money) MulQty(qty int) (Money, error) {
	if qty < 0 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is negative", qty))
	}
	return Money{amount: m.amount * int64(qty)}, nil
}

// IsEqual compares two amounts.
func (m Money) IsEqual(other Money) bool {
	return m.amount == other.amount
}

// String returns the amount in minor units as text.
func (m Money) String() string {
	return fmt.Sprintf("%d", m.amount)
}
