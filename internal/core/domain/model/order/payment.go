package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// PaymentStatus tracks the state of the order's payment as reported by the
// payment authority. Payment processing itself is an external collaborator;
// the order only caches the outcome.
type PaymentStatus int

const (
	// PaymentStatusUnknown represents an invalid or undefined payment status.
	PaymentStatusUnknown PaymentStatus = iota

	// PaymentStatusPending means the payment intent exists but is not settled.
	PaymentStatusPending

	// PaymentStatusPaid means the payment authority confirmed settlement.
	PaymentStatusPaid

	// PaymentStatusRefunded means the payment was returned to the customer.
	PaymentStatusRefunded

	// PaymentStatusFailed means the payment could not be settled.
	PaymentStatusFailed
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentStatusUnknown:  "unknown",
		PaymentStatusPending:  "pending",
		PaymentStatusPaid:     "paid",
		PaymentStatusRefunded: "refunded",
		PaymentStatusFailed:   "failed",
	}
}

// PaymentStatusFromString parses a wire representation into a PaymentStatus.
func PaymentStatusFromString(s string) (PaymentStatus, error) {
	for ps, str := range getPaymentStatusStrings() {
		if ps != PaymentStatusUnknown && str == s {
			return ps, nil
		}
	}
	return PaymentStatusUnknown, errs.NewValueIsInvalidErrorWithCause("payment status",
		fmt.Errorf("%q is not a valid payment status", s))
}

// Validate checks if the PaymentStatus value is valid.
func (p PaymentStatus) Validate() error {
	if _, ok := getPaymentStatusStrings()[p]; !ok || p == PaymentStatusUnknown {
		return errs.NewValueIsInvalidErrorWithCause("payment status",
			fmt.Errorf("%d is not a valid payment status", p))
	}
	return nil
}

// String returns the wire representation of the payment status.
func (p PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[p]; ok {
		return str
	}
	return "unknown"
}

// Payment is the order's cached view of its payment: the method used and the
// last known settlement state.
type Payment struct {
	method string
	status PaymentStatus
}

// NewPayment creates a payment record. Method must be non-empty
// (e.g. "card", "upi", "cash_on_delivery").
func NewPayment(method string, status PaymentStatus) (Payment, error) {
	if method == "" {
		return Payment{}, errs.NewValueIsRequiredError("payment method")
	}
	if err := status.Validate(); err != nil {
		return Payment{}, err
	}
	return Payment{method: method, status: status}, nil
}

// Method returns the payment method.
func (p Payment) Method() string {
	return p.method
}

// Status returns the last known payment status.
func (p Payment) Status() PaymentStatus {
	return p.status
}

// WithStatus returns a copy of the payment with an updated status.
func (p Payment) WithStatus(status PaymentStatus) (Payment, error) {
	if err := status.Validate(); err != nil {
		return Payment{}, err
	}
	return Payment{method: p.method, status: status}, nil
}
