package queries

import (
	"context"
	"database/sql"
	"encoding/json"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderHistoryQueryHandler reads the status event log from the database.
// The commit order of the events is the source of truth for the order's
// lifecycle; results come back oldest first.
type GetOrderHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderHistoryQueryHandler creates a handler for status history queries.
func NewGetOrderHistoryQueryHandler(db *gorm.DB) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db}
}

// Handle executes the history query. An order with no events yields an empty
// slice, not an error.
func (h GetOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderHistoryQuery,
) ([]GetOrderHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	events := make([]GetOrderHistoryQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			changed_by,
			user_type,
			reason,
			metadata,
			created_at
		FROM order_status_events
		WHERE order_id = ?
		ORDER BY created_at, id
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var event GetOrderHistoryQueryResponse
		var id, changedBy uuid.UUID
		var reason sql.NullString
		var metadata []byte

		err = rows.Scan(
			&id,
			&event.Status,
			&changedBy,
			&event.UserType,
			&reason,
			&metadata,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if event.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if event.ChangedBy, err = kernel.UUIDFromBytes(changedBy[:]); err != nil {
			return nil, err
		}
		event.Reason = reason.String
		if len(metadata) > 0 {
			if err = json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, err
			}
		}

		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
