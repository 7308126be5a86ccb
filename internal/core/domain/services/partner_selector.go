package services

import (
	"errors"
	"sort"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/partner"
)

// ErrNoPartnerAvailable is returned when no delivery partner can take an
// assignment. This occurs when the candidate pool is empty, every candidate
// is unavailable or excluded, or none is within the search radius.
var ErrNoPartnerAvailable = errors.New("no partner available")

// SelectionPolicy configures how candidates are ranked. The tie-break order
// is a policy knob, not a hard contract; the default ranks by distance to the
// restaurant, then rating (higher first), then current assignment load
// (lighter first).
type SelectionPolicy struct {
	// RadiusKm bounds the search around the restaurant. Zero or negative
	// disables the radius filter.
	RadiusKm float64
}

// DefaultSelectionPolicy returns the standard policy with a 10 km radius.
func DefaultSelectionPolicy() SelectionPolicy {
	return SelectionPolicy{RadiusKm: 10}
}

// PartnerSelector is a domain service that picks the delivery partner for an
// order from a pool of candidates.
//
// Business rules:
//   - unavailable partners are never selected
//   - explicitly excluded partners (previous rejectors) are never selected
//   - candidates outside the policy radius are filtered out
//   - remaining candidates are ranked per the selection policy
type PartnerSelector struct {
	policy SelectionPolicy
}

// NewPartnerSelector creates a PartnerSelector with the given policy.
func NewPartnerSelector(policy SelectionPolicy) PartnerSelector {
	return PartnerSelector{policy: policy}
}

// RadiusKm returns the policy's search radius.
func (s PartnerSelector) RadiusKm() float64 {
	return s.policy.RadiusKm
}

// Select returns the best candidate for a pickup at the restaurant's
// position. excluded lists partners that must not be considered, typically
// those who already rejected this order.
func (s PartnerSelector) Select(
	pickup kernel.GeoPoint,
	candidates []*partner.DeliveryPartner,
	excluded []kernel.UUID,
) (*partner.DeliveryPartner, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	type ranked struct {
		partner    *partner.DeliveryPartner
		distanceKm float64
	}

	pool := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if !c.IsAvailable() || s.isExcluded(c.ID(), excluded) {
			continue
		}

		distance, err := c.DistanceKmTo(pickup)
		if err != nil {
			return nil, err
		}
		if s.policy.RadiusKm > 0 && distance > s.policy.RadiusKm {
			continue
		}

		pool = append(pool, ranked{partner: c, distanceKm: distance})
	}

	if len(pool) == 0 {
		return nil, ErrNoPartnerAvailable
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].distanceKm != pool[j].distanceKm {
			return pool[i].distanceKm < pool[j].distanceKm
		}
		if pool[i].partner.Rating() != pool[j].partner.Rating() {
			return pool[i].partner.Rating() > pool[j].partner.Rating()
		}
		return pool[i].partner.ActiveAssignments() < pool[j].partner.ActiveAssignments()
	})

	return pool[0].partner, nil
}

func (s PartnerSelector) isExcluded(id kernel.UUID, excluded []kernel.UUID) bool {
	for _, e := range excluded {
		if id.IsEqual(e) {
			return true
		}
	}
	return false
}
