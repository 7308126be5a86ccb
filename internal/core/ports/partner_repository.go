// Package ports defines repository and collaborator interfaces for the order
// coordination domain. These interfaces establish contracts between the domain
// layer and infrastructure, enabling dependency inversion and testability.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/partner"
)

// PartnerRepository defines the persistence contract for delivery partner
// aggregates. It doubles as the partner directory consulted by the assignment
// workflow.
type PartnerRepository interface {
	// Add persists a new partner aggregate to storage.
	Add(ctx context.Context, aggregate *partner.DeliveryPartner) error

	// Update persists changes to an existing partner aggregate.
	Update(ctx context.Context, aggregate *partner.DeliveryPartner) error

	// Get retrieves a partner aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*partner.DeliveryPartner, error)

	// FindAvailable retrieves available partners within radiusKm of the given
	// position. A non-positive radius returns all available partners.
	FindAvailable(ctx context.Context, near kernel.GeoPoint, radiusKm float64) ([]*partner.DeliveryPartner, error)
}
