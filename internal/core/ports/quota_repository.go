package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/quota"
)

// QuotaRepository defines the persistence contract for subscription quota
// records. One record exists per restaurant and billing period.
type QuotaRepository interface {
	// Add persists a new quota period record.
	Add(ctx context.Context, aggregate *quota.SubscriptionQuota) error

	// Update persists changes to an existing quota record using a
	// compare-and-swap on the aggregate version.
	Update(ctx context.Context, aggregate *quota.SubscriptionQuota) error

	// GetActiveByRestaurant retrieves the restaurant's quota record whose
	// billing period covers the given instant. Returns a not-found error if
	// no such record exists.
	GetActiveByRestaurant(ctx context.Context, restaurantID kernel.UUID, now time.Time) (*quota.SubscriptionQuota, error)

	// Consume atomically increments consumption against the restaurant's
	// active, unexpired period record. Returns false without error when no
	// active record exists or the limit is already reached; it never creates
	// a record.
	Consume(ctx context.Context, restaurantID kernel.UUID, now time.Time) (bool, error)
}
