package quota

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// UnlimitedRemaining is the sentinel remaining value reported for plans with
// no order limit.
const UnlimitedRemaining = -1

// Domain errors for quota operations.
var (
	// ErrPlanIsRequired is returned when a quota period is created without a plan tier.
	ErrPlanIsRequired = errs.NewValueIsRequiredError("plan")
	// ErrPeriodIsInvalid is returned when the period end does not come after the start.
	ErrPeriodIsInvalid = errs.NewValueIsInvalidError("quota period")
	// ErrQuotaIsNotConstructed is returned when using an improperly initialized SubscriptionQuota.
	ErrQuotaIsNotConstructed = errors.New(
		"SubscriptionQuota must be created via NewSubscriptionQuota constructor")
)

// Decision is the outcome of a quota check. Remaining is UnlimitedRemaining
// for unlimited plans and never negative otherwise.
type Decision struct {
	Allowed   bool
	Remaining int
	Plan      string
}

// SubscriptionQuota tracks one restaurant's order-count consumption against
// its plan limit for one billing period. Consumption is monotonic within a
// period; a new period record replaces the old one at rollover.
//
// Business rules:
//   - a negative order limit means the plan is unlimited
//   - the consumed count never exceeds the limit for a limited plan
//   - consumption is only valid against an active, unexpired period
type SubscriptionQuota struct {
	restaurantID kernel.UUID
	plan         string
	orderLimit   int
	orderCount   int
	periodStart  time.Time
	periodEnd    time.Time

	version int64

	guard guard.ConstructorGuard
}

// NewSubscriptionQuota creates a fresh quota period with zero consumption.
// A negative orderLimit marks the plan as unlimited.
func NewSubscriptionQuota(
	restaurantID kernel.UUID,
	plan string,
	orderLimit int,
	periodStart, periodEnd time.Time,
) (*SubscriptionQuota, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}
	if plan == "" {
		return nil, ErrPlanIsRequired
	}
	if !periodEnd.After(periodStart) {
		return nil, ErrPeriodIsInvalid
	}

	return &SubscriptionQuota{
		restaurantID: restaurantID,
		plan:         plan,
		orderLimit:   orderLimit,
		periodStart:  periodStart,
		periodEnd:    periodEnd,
		version:      1,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// RestoreSubscriptionQuota reconstructs a quota record from persistent storage.
func RestoreSubscriptionQuota(
	restaurantID kernel.UUID,
	plan string,
	orderLimit, orderCount int,
	periodStart, periodEnd time.Time,
	version int64,
) (*SubscriptionQuota, error) {
	quota, err := NewSubscriptionQuota(restaurantID, plan, orderLimit, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if orderCount < 0 {
		return nil, errs.NewValueIsInvalidError("order count")
	}

	quota.orderCount = orderCount
	quota.version = version
	return quota, nil
}

// Validate ensures the quota record was properly constructed.
func (q *SubscriptionQuota) Validate() error {
	if q == nil {
		return ErrQuotaIsNotConstructed
	}
	return q.guard.Validate(ErrQuotaIsNotConstructed)
}

// RestaurantID returns the owning restaurant's reference.
func (q *SubscriptionQuota) RestaurantID() kernel.UUID {
	return q.restaurantID
}

// Plan returns the plan tier name.
func (q *SubscriptionQuota) Plan() string {
	return q.plan
}

// OrderLimit returns the plan's order limit. Negative means unlimited.
func (q *SubscriptionQuota) OrderLimit() int {
	return q.orderLimit
}

// OrderCount returns the consumed order count for this period.
func (q *SubscriptionQuota) OrderCount() int {
	return q.orderCount
}

// PeriodStart returns the start of the billing period.
func (q *SubscriptionQuota) PeriodStart() time.Time {
	return q.periodStart
}

// PeriodEnd returns the end of the billing period.
func (q *SubscriptionQuota) PeriodEnd() time.Time {
	return q.periodEnd
}

// Version returns the optimistic-concurrency version.
func (q *SubscriptionQuota) Version() int64 {
	return q.version
}

// IsUnlimited reports whether the plan has no order limit.
func (q *SubscriptionQuota) IsUnlimited() bool {
	return q.orderLimit < 0
}

// IsActiveAt reports whether the billing period covers the given instant.
func (q *SubscriptionQuota) IsActiveAt(now time.Time) bool {
	return !now.Before(q.periodStart) && now.Before(q.periodEnd)
}

// Check reports whether the restaurant may admit another order right now.
// An expired period means not allowed; an unlimited plan is always allowed
// with the UnlimitedRemaining sentinel; otherwise remaining is clamped at
// zero and admission requires remaining > 0.
func (q *SubscriptionQuota) Check(now time.Time) Decision {
	if !q.IsActiveAt(now) {
		return Decision{Allowed: false, Remaining: 0, Plan: q.plan}
	}
	if q.IsUnlimited() {
		return Decision{Allowed: true, Remaining: UnlimitedRemaining, Plan: q.plan}
	}

	remaining := q.orderLimit - q.orderCount
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: remaining > 0, Remaining: remaining, Plan: q.plan}
}

// Consume increments the consumed count by one. It fails with a state error
// outside the billing period and with a quota error when a limited plan is
// exhausted; it never pushes the count past the limit.
func (q *SubscriptionQuota) Consume(now time.Time) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if !q.IsActiveAt(now) {
		return errs.NewInvalidStateError("quota period", "expired")
	}
	if !q.IsUnlimited() && q.orderCount >= q.orderLimit {
		return errs.NewQuotaExceededError(q.restaurantID.String(), q.plan, 0)
	}

	q.orderCount++
	q.version++
	return nil
}
