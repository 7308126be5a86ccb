package partner

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const (
	// minRating and maxRating bound the partner rating scale.
	minRating = 0
	maxRating = 5
)

// Domain errors for delivery partner operations.
var (
	// ErrNameIsRequired is returned when attempting to create a partner without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPartnerIsNotConstructed is returned when using an improperly initialized DeliveryPartner.
	ErrPartnerIsNotConstructed = errors.New("DeliveryPartner must be created via NewDeliveryPartner constructor")
	// ErrNoActiveAssignments is returned when releasing an assignment from a partner with none.
	ErrNoActiveAssignments = errors.New("partner has no active assignments")
)

// DeliveryPartner represents a delivery partner known to the assignment
// workflow. It tracks the attributes the selection policy ranks on: last
// reported position, rating and current assignment load, plus an availability
// flag the partner toggles themselves.
//
// Business rules:
//   - rating stays within [0, 5]
//   - active assignment count never goes negative
//   - an unavailable partner is never selected, regardless of distance
type DeliveryPartner struct {
	id       kernel.UUID
	name     string
	location kernel.GeoPoint
	rating   float64

	available         bool
	activeAssignments int
	locationUpdatedAt time.Time

	guard guard.ConstructorGuard
}

// NewDeliveryPartner creates a new DeliveryPartner at the given position.
// New partners start available with no active assignments.
func NewDeliveryPartner(id kernel.UUID, name string, location kernel.GeoPoint, rating float64) (*DeliveryPartner, error) {
	p := &DeliveryPartner{
		available: true,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setName(name),
		p.setLocation(location, time.Time{}),
		p.setRating(rating),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestoreDeliveryPartner reconstructs a DeliveryPartner from persistent storage,
// including its availability and current assignment load.
func RestoreDeliveryPartner(
	id kernel.UUID,
	name string,
	location kernel.GeoPoint,
	rating float64,
	available bool,
	activeAssignments int,
	locationUpdatedAt time.Time,
) (*DeliveryPartner, error) {
	p := &DeliveryPartner{
		available: available,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setName(name),
		p.setLocation(location, locationUpdatedAt),
		p.setRating(rating),
		p.setActiveAssignments(activeAssignments),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks if the DeliveryPartner was properly constructed.
func (p *DeliveryPartner) Validate() error {
	if p == nil {
		return ErrPartnerIsNotConstructed
	}
	return p.guard.Validate(ErrPartnerIsNotConstructed)
}

// IsEqual compares two partners by their unique identifiers.
func (p *DeliveryPartner) IsEqual(other *DeliveryPartner) bool {
	return other != nil && p.id.IsEqual(other.id)
}

// ID returns the partner's unique identifier.
func (p *DeliveryPartner) ID() kernel.UUID {
	return p.id
}

// Name returns the partner's display name.
func (p *DeliveryPartner) Name() string {
	return p.name
}

// Location returns the partner's last reported position.
func (p *DeliveryPartner) Location() kernel.GeoPoint {
	return p.location
}

// LocationUpdatedAt returns when the position was last reported.
func (p *DeliveryPartner) LocationUpdatedAt() time.Time {
	return p.locationUpdatedAt
}

// Rating returns the partner's rating on the [0, 5] scale.
func (p *DeliveryPartner) Rating() float64 {
	return p.rating
}

// IsAvailable reports whether the partner accepts new assignments.
func (p *DeliveryPartner) IsAvailable() bool {
	return p.available
}

// ActiveAssignments returns the number of live assignments the partner holds.
func (p *DeliveryPartner) ActiveAssignments() int {
	return p.activeAssignments
}

// SetAvailability toggles whether the partner accepts new assignments.
func (p *DeliveryPartner) SetAvailability(available bool) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.available = available
	return nil
}

// ReportLocation updates the partner's last reported position.
func (p *DeliveryPartner) ReportLocation(location kernel.GeoPoint, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return p.setLocation(location, now)
}

// TakeAssignment increments the partner's live assignment count.
func (p *DeliveryPartner) TakeAssignment() error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.activeAssignments++
	return nil
}

// ReleaseAssignment decrements the partner's live assignment count when an
// assignment reaches a terminal sub-status.
func (p *DeliveryPartner) ReleaseAssignment() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.activeAssignments == 0 {
		return ErrNoActiveAssignments
	}
	p.activeAssignments--
	return nil
}

// DistanceKmTo returns the great-circle distance from the partner's last
// reported position to the target, in kilometers.
func (p *DeliveryPartner) DistanceKmTo(target kernel.GeoPoint) (float64, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}
	return p.location.DistanceKm(target)
}

func (p *DeliveryPartner) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *DeliveryPartner) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	p.name = name
	return nil
}

func (p *DeliveryPartner) setLocation(location kernel.GeoPoint, at time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	p.location = location
	p.locationUpdatedAt = at
	return nil
}

func (p *DeliveryPartner) setRating(rating float64) error {
	if rating < minRating || rating > maxRating {
		return errs.NewValueIsOutOfRangeError("rating", rating, minRating, maxRating)
	}
	p.rating = rating
	return nil
}

func (p *DeliveryPartner) setActiveAssignments(count int) error {
	if count < 0 {
		return errs.NewValueIsInvalidError("active assignments")
	}
	p.activeAssignments = count
	return nil
}
