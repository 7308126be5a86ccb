// Package quotarepo provides data transfer objects and mapping functions for
// subscription quota persistence. One row exists per restaurant and billing
// period; consumption against it is a conditional in-database increment.
package quotarepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/quota"

	"github.com/google/uuid"
)

// QuotaDTO represents the database structure for persisting quota periods.
// A negative order limit marks the plan as unlimited.
type QuotaDTO struct {
	RestaurantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	PeriodStart  time.Time `gorm:"primaryKey"`
	PeriodEnd    time.Time

	Plan       string
	OrderLimit int
	OrderCount int

	Version int64
}

// TableName specifies the database table name for quota records.
func (QuotaDTO) TableName() string {
	return "subscription_quotas"
}

// fromDomain converts a quota domain aggregate to its database representation.
func fromDomain(aggregate *quota.SubscriptionQuota) QuotaDTO {
	return QuotaDTO{
		RestaurantID: aggregate.RestaurantID().Bytes(),
		PeriodStart:  aggregate.PeriodStart(),
		PeriodEnd:    aggregate.PeriodEnd(),
		Plan:         aggregate.Plan(),
		OrderLimit:   aggregate.OrderLimit(),
		OrderCount:   aggregate.OrderCount(),
		Version:      aggregate.Version(),
	}
}

// toDomain converts a database DTO to a quota domain aggregate.
func toDomain(dto QuotaDTO) (*quota.SubscriptionQuota, error) {
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	return quota.RestoreSubscriptionQuota(
		restaurantID, dto.Plan,
		dto.OrderLimit, dto.OrderCount,
		dto.PeriodStart, dto.PeriodEnd,
		dto.Version,
	)
}
