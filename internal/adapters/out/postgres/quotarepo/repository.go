package quotarepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/quota"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormQuotaRepository implements ports.QuotaRepository using GORM.
type GormQuotaRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormQuotaRepository creates a new GORM quota repository.
func NewGormQuotaRepository(db *gorm.DB, tracker aggregateTracker) *GormQuotaRepository {
	return &GormQuotaRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new quota period record.
func (r *GormQuotaRepository) Add(ctx context.Context, aggregate *quota.SubscriptionQuota) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.RestaurantID(), aggregate)
	return nil
}

// Update saves an existing quota record guarded by its version.
func (r *GormQuotaRepository) Update(ctx context.Context, aggregate *quota.SubscriptionQuota) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&QuotaDTO{}).
		Where("restaurant_id = ? AND period_start = ? AND version < ?",
			dto.RestaurantID, dto.PeriodStart, dto.Version).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewVersionIsInvalidError("quota version")
	}

	r.tracker.TrackAggregate(aggregate.RestaurantID(), aggregate)
	return nil
}

// GetActiveByRestaurant retrieves the restaurant's quota record whose billing
// period covers the given instant.
func (r *GormQuotaRepository) GetActiveByRestaurant(
	ctx context.Context,
	restaurantID kernel.UUID,
	now time.Time,
) (*quota.SubscriptionQuota, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	var dto QuotaDTO
	err := r.db.WithContext(ctx).
		First(&dto, "restaurant_id = ? AND period_start <= ? AND period_end > ?",
			restaurantID.Bytes(), now, now).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("quota", restaurantID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Consume atomically increments consumption against the restaurant's active
// period record. The guard runs inside the UPDATE, so two admissions racing
// for the last slot cannot both win; a missing record or an exhausted limit
// is a false result, not an error.
func (r *GormQuotaRepository) Consume(ctx context.Context, restaurantID kernel.UUID, now time.Time) (bool, error) {
	if err := restaurantID.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Exec(`
		UPDATE subscription_quotas
		SET order_count = order_count + 1,
		    version = version + 1
		WHERE restaurant_id = ?
		  AND period_start <= ?
		  AND period_end > ?
		  AND (order_limit < 0 OR order_count < order_limit)
	`, restaurantID.Bytes(), now, now)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
