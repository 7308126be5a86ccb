package assignmentrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormAssignmentRepository implements ports.AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAssignmentRepository creates a new GORM assignment repository.
func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new assignment. A live assignment for the same order fails the
// insert; rejected and cancelled records for the order are only history.
func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.DeliveryAssignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	var liveCount int64
	err := r.db.WithContext(ctx).Model(&AssignmentDTO{}).
		Where("order_id = ? AND status IN ?", aggregate.OrderID().Bytes(), liveStatuses()).
		Count(&liveCount).Error
	if err != nil {
		return err
	}
	if liveCount > 0 {
		return errs.NewInvalidStateErrorWithCause("order assignment", aggregate.Status().String(),
			fmt.Errorf("order %s already has a live assignment", aggregate.OrderID()))
	}

	dto := fromDomain(aggregate)
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing assignment guarded by its version. A stale
// aggregate fails with a version error and writes nothing.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.DeliveryAssignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&AssignmentDTO{}).
		Where("id = ? AND version < ?", dto.ID, dto.Version).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewVersionIsInvalidError("assignment version")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an assignment by ID.
func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.DeliveryAssignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActiveByOrder retrieves the order's single non-terminal assignment.
func (r *GormAssignmentRepository) GetActiveByOrder(
	ctx context.Context,
	orderID kernel.UUID,
) (*assignment.DeliveryAssignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ? AND status IN ?", orderID.Bytes(), liveStatuses()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllAssignedBefore retrieves assignments still awaiting a partner response
// created before the cutoff. Used by the acceptance timeout sweep.
func (r *GormAssignmentRepository) GetAllAssignedBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]*assignment.DeliveryAssignment, error) {
	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "status = ? AND assigned_at < ?", assignment.StatusAssigned.String(), cutoff).Error
	if err != nil {
		return nil, err
	}

	assignments := make([]*assignment.DeliveryAssignment, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, domainErr := toDomain(dto)
		if domainErr != nil {
			return nil, domainErr
		}
		assignments = append(assignments, aggregate)
	}

	return assignments, nil
}

// GetDeclinedPartnerIDs retrieves the partners whose assignments for the order
// ended in rejected or cancelled. Timed-out assignments are cancelled, so
// their partners are excluded from reassignment the same way refusals are.
func (r *GormAssignmentRepository) GetDeclinedPartnerIDs(
	ctx context.Context,
	orderID kernel.UUID,
) ([]kernel.UUID, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	declined := []string{
		assignment.StatusRejected.String(),
		assignment.StatusCancelled.String(),
	}

	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Distinct("partner_id").
		Find(&dtos, "order_id = ? AND status IN ?", orderID.Bytes(), declined).Error
	if err != nil {
		return nil, err
	}

	partnerIDs := make([]kernel.UUID, 0, len(dtos))
	for _, dto := range dtos {
		partnerID, idErr := kernel.UUIDFromBytes(dto.PartnerID[:])
		if idErr != nil {
			return nil, idErr
		}
		partnerIDs = append(partnerIDs, partnerID)
	}

	return partnerIDs, nil
}
