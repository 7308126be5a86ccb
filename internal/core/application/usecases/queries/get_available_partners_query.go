package queries

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetAvailablePartnersQueryIsNotConstructed = errors.New(
	"GetAvailablePartnersQuery must be created via NewGetAvailablePartnersQuery constructor",
)

// GetAvailablePartnersQuery retrieves every delivery partner currently
// accepting work, for dispatch dashboards.
type GetAvailablePartnersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAvailablePartnersQuery creates a query for available partners.
// This is a parameterless query.
func NewGetAvailablePartnersQuery() GetAvailablePartnersQuery {
	return GetAvailablePartnersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAvailablePartnersQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailablePartnersQueryIsNotConstructed)
}

// GetAvailablePartnersQueryResponse is one available partner with their last
// reported position and current load.
type GetAvailablePartnersQueryResponse struct {
	ID                kernel.UUID
	Name              string
	Lat               float64
	Lng               float64
	Rating            float64
	ActiveAssignments int
}
