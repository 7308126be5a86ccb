package queries

import (
	"context"
	"database/sql"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveAssignmentQueryHandler reads the live assignment of an order. At
// most one assignment per order is live at a time; terminal records are
// history and never returned here.
type GetActiveAssignmentQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveAssignmentQueryHandler creates a handler for live assignment queries.
func NewGetActiveAssignmentQueryHandler(db *gorm.DB) GetActiveAssignmentQueryHandler {
	return GetActiveAssignmentQueryHandler{db: db}
}

// Handle executes the query. Returns an ObjectNotFoundError when the order has
// no live assignment.
func (h GetActiveAssignmentQueryHandler) Handle(
	ctx context.Context,
	query GetActiveAssignmentQuery,
) (GetActiveAssignmentQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetActiveAssignmentQueryResponse{}, err
	}

	var resp GetActiveAssignmentQueryResponse
	var id, orderID, partnerID uuid.UUID

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			partner_id,
			status,
			assigned_at,
			accepted_at,
			picked_up_at,
			last_lat,
			last_lng,
			last_location_at
		FROM assignments
		WHERE order_id = ?
		  AND status IN ('assigned', 'accepted', 'picked_up')
	`, query.OrderID().Bytes()).Row()

	err := row.Scan(
		&id,
		&orderID,
		&partnerID,
		&resp.Status,
		&resp.AssignedAt,
		&resp.AcceptedAt,
		&resp.PickedUpAt,
		&resp.LastLat,
		&resp.LastLng,
		&resp.LastReportedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return GetActiveAssignmentQueryResponse{},
				errs.NewObjectNotFoundError("assignment", query.OrderID().String())
		}
		return GetActiveAssignmentQueryResponse{}, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetActiveAssignmentQueryResponse{}, err
	}
	if resp.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
		return GetActiveAssignmentQueryResponse{}, err
	}
	if resp.PartnerID, err = kernel.UUIDFromBytes(partnerID[:]); err != nil {
		return GetActiveAssignmentQueryResponse{}, err
	}

	return resp, nil
}
