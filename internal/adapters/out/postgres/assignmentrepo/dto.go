// Package assignmentrepo provides data transfer objects and mapping functions
// for delivery assignment persistence. The store is where the
// single-live-assignment-per-order invariant is enforced.
package assignmentrepo

import (
	"time"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AssignmentDTO represents the database structure for persisting delivery
// assignments. The partner's last reported position is flattened into the row
// and overwritten in place.
type AssignmentDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	PartnerID uuid.UUID `gorm:"type:uuid;index"`

	Status       string `gorm:"index"`
	RejectReason string

	AssignedAt  time.Time
	AcceptedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time

	LastLat        *float64
	LastLng        *float64
	LastLocationAt *time.Time

	Version int64
}

// TableName specifies the database table name for assignment entities.
func (AssignmentDTO) TableName() string {
	return "assignments"
}

// liveStatuses returns the wire representations of the non-terminal sub-statuses.
func liveStatuses() []string {
	return []string{
		assignment.StatusAssigned.String(),
		assignment.StatusAccepted.String(),
		assignment.StatusPickedUp.String(),
	}
}

// fromDomain converts an assignment domain aggregate to its database representation.
func fromDomain(aggregate *assignment.DeliveryAssignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:           aggregate.ID().Bytes(),
		OrderID:      aggregate.OrderID().Bytes(),
		PartnerID:    aggregate.PartnerID().Bytes(),
		Status:       aggregate.Status().String(),
		RejectReason: aggregate.RejectReason(),
		AssignedAt:   aggregate.AssignedAt(),
		AcceptedAt:   aggregate.AcceptedAt(),
		PickedUpAt:   aggregate.PickedUpAt(),
		DeliveredAt:  aggregate.DeliveredAt(),
		Version:      aggregate.Version(),
	}

	if location := aggregate.LastLocation(); location != nil {
		lat := location.Point.Lat()
		lng := location.Point.Lng()
		at := location.UpdatedAt
		dto.LastLat = &lat
		dto.LastLng = &lng
		dto.LastLocationAt = &at
	}

	return dto
}

// toDomain converts a database DTO to an assignment domain aggregate.
func toDomain(dto AssignmentDTO) (*assignment.DeliveryAssignment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	partnerID, err := kernel.UUIDFromBytes(dto.PartnerID[:])
	if err != nil {
		return nil, err
	}

	status, err := assignment.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	var lastLocation *assignment.PartnerLocation
	if dto.LastLat != nil && dto.LastLng != nil && dto.LastLocationAt != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.LastLat, *dto.LastLng)
		if pointErr != nil {
			return nil, pointErr
		}
		lastLocation = &assignment.PartnerLocation{Point: point, UpdatedAt: *dto.LastLocationAt}
	}

	return assignment.RestoreDeliveryAssignment(
		id, orderID, partnerID,
		status, dto.RejectReason,
		dto.AssignedAt, dto.AcceptedAt, dto.PickedUpAt, dto.DeliveredAt,
		lastLocation, dto.Version,
	)
}
