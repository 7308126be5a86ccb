// Package partnerrepo provides data transfer objects and mapping functions for
// delivery partner persistence. The partner table doubles as the directory the
// selection policy reads candidates from.
package partnerrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/partner"

	"github.com/google/uuid"
)

// PartnerDTO represents the database structure for persisting delivery
// partners. Availability is indexed; candidate lookup always filters on it.
type PartnerDTO struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string

	Lat    float64
	Lng    float64
	Rating float64

	Available         bool `gorm:"index"`
	ActiveAssignments int

	LocationUpdatedAt time.Time
}

// TableName specifies the database table name for partner entities.
func (PartnerDTO) TableName() string {
	return "partners"
}

// fromDomain converts a partner domain aggregate to its database representation.
func fromDomain(aggregate *partner.DeliveryPartner) PartnerDTO {
	return PartnerDTO{
		ID:                aggregate.ID().Bytes(),
		Name:              aggregate.Name(),
		Lat:               aggregate.Location().Lat(),
		Lng:               aggregate.Location().Lng(),
		Rating:            aggregate.Rating(),
		Available:         aggregate.IsAvailable(),
		ActiveAssignments: aggregate.ActiveAssignments(),
		LocationUpdatedAt: aggregate.LocationUpdatedAt(),
	}
}

// toDomain converts a database DTO to a partner domain aggregate.
func toDomain(dto PartnerDTO) (*partner.DeliveryPartner, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	location, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	return partner.RestoreDeliveryPartner(
		id, dto.Name, location, dto.Rating,
		dto.Available, dto.ActiveAssignments, dto.LocationUpdatedAt,
	)
}
