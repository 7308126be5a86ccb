package orderrepo

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order with its line items and group participants.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order guarded by its version: the write only lands
// if the stored version is older than the aggregate's. A stale aggregate fails
// with a version error and writes nothing. Line items never change after
// creation and are not touched.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND version < ?", dto.ID, dto.Version).
		Omit("Items", "Participants").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewVersionIsInvalidError("order version")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID, including its line items and participants.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Participants").
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// AppendStatusEvent writes one immutable status event. Events are append-only.
func (r *GormOrderRepository) AppendStatusEvent(ctx context.Context, event *order.StatusEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	dto, err := eventFromDomain(event)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetStatusHistory retrieves the order's status events, oldest first.
func (r *GormOrderRepository) GetStatusHistory(ctx context.Context, orderID kernel.UUID) ([]*order.StatusEvent, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []StatusEventDTO
	err := r.db.WithContext(ctx).
		Order("created_at, id").
		Find(&dtos, "order_id = ?", orderID.Bytes()).Error
	if err != nil {
		return nil, err
	}

	events := make([]*order.StatusEvent, 0, len(dtos))
	for _, dto := range dtos {
		event, eventErr := eventToDomain(dto)
		if eventErr != nil {
			return nil, eventErr
		}
		events = append(events, event)
	}

	return events, nil
}

// GetAllActiveByRestaurant retrieves the restaurant's non-terminal orders.
func (r *GormOrderRepository) GetAllActiveByRestaurant(
	ctx context.Context,
	restaurantID kernel.UUID,
) ([]*order.Order, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	terminal := []string{
		order.StatusDelivered.String(),
		order.StatusCancelled.String(),
		order.StatusRejected.String(),
		order.StatusFailed.String(),
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Participants").
		Find(&dtos, "restaurant_id = ? AND status NOT IN ?", restaurantID.Bytes(), terminal).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, domainErr := toDomain(dto)
		if domainErr != nil {
			return nil, domainErr
		}
		orders = append(orders, aggregate)
	}

	return orders, nil
}
