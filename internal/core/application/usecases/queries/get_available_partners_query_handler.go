package queries

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailablePartnersQueryHandler reads the partner directory from the
// database. Results are sorted by name for stable dashboard output.
type GetAvailablePartnersQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailablePartnersQueryHandler creates a handler for available partner queries.
func NewGetAvailablePartnersQueryHandler(db *gorm.DB) GetAvailablePartnersQueryHandler {
	return GetAvailablePartnersQueryHandler{db: db}
}

// Handle executes the query to retrieve all partners accepting work.
func (h GetAvailablePartnersQueryHandler) Handle(
	ctx context.Context,
	query GetAvailablePartnersQuery,
) ([]GetAvailablePartnersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	partners := make([]GetAvailablePartnersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			lat,
			lng,
			rating,
			active_assignments
		FROM partners
		WHERE available
		ORDER BY name
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p GetAvailablePartnersQueryResponse
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&p.Name,
			&p.Lat,
			&p.Lng,
			&p.Rating,
			&p.ActiveAssignments,
		)
		if err != nil {
			return nil, err
		}

		if p.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return partners, nil
}
