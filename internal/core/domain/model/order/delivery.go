package order

import (
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// DeliveryType distinguishes courier delivery from customer pickup.
type DeliveryType int

const (
	// DeliveryTypeUnknown represents an invalid or undefined delivery type.
	DeliveryTypeUnknown DeliveryType = iota

	// DeliveryTypeDelivery means a delivery partner brings the order to an address.
	DeliveryTypeDelivery

	// DeliveryTypePickup means the customer collects the order at the restaurant.
	DeliveryTypePickup
)

func getDeliveryTypeStrings() map[DeliveryType]string {
	return map[DeliveryType]string{
		DeliveryTypeUnknown:  "unknown",
		DeliveryTypeDelivery: "delivery",
		DeliveryTypePickup:   "pickup",
	}
}

// DeliveryTypeFromString parses a wire representation into a DeliveryType.
func DeliveryTypeFromString(s string) (DeliveryType, error) {
	for dt, str := range getDeliveryTypeStrings() {
		if dt != DeliveryTypeUnknown && str == s {
			return dt, nil
		}
	}
	return DeliveryTypeUnknown, errs.NewValueIsInvalidErrorWithCause("deliveryType",
		fmt.Errorf("%q is not a valid delivery type", s))
}

// Validate checks if the DeliveryType value is valid.
func (d DeliveryType) Validate() error {
	if d != DeliveryTypeDelivery && d != DeliveryTypePickup {
		return errs.NewValueIsInvalidErrorWithCause("deliveryType",
			fmt.Errorf("%d is not a valid delivery type", d))
	}
	return nil
}

// String returns the wire representation of the delivery type.
func (d DeliveryType) String() string {
	if str, ok := getDeliveryTypeStrings()[d]; ok {
		return str
	}
	return "unknown"
}

// Address is the delivery destination: free-text lines plus a geocoded point.
type Address struct {
	line  string
	point kernel.GeoPoint
}

// NewAddress creates a delivery address.
// The text line must be non-empty and the point must be a constructed GeoPoint.
func NewAddress(line string, point kernel.GeoPoint) (Address, error) {
	if line == "" {
		return Address{}, errs.NewValueIsRequiredError("address line")
	}
	if err := point.Validate(); err != nil {
		return Address{}, err
	}
	return Address{line: line, point: point}, nil
}

// Line returns the free-text address.
func (a Address) Line() string {
	return a.line
}

// Point returns the geocoded coordinate.
func (a Address) Point() kernel.GeoPoint {
	return a.point
}
