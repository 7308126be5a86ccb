package queries

import (
	"context"
	"database/sql"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads order snapshots straight from the database,
// bypassing the aggregate. Read models stay decoupled from write-side
// invariants.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for order snapshot queries.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the snapshot query. Returns an ObjectNotFoundError when the
// order does not exist.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var resp GetOrderQueryResponse
	var id, customerID, restaurantID uuid.UUID
	var partnerID *uuid.UUID
	var addressLine sql.NullString
	var createdAt, updatedAt time.Time

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			restaurant_id,
			status,
			delivery_type,
			address_line,
			payment_method,
			payment_status,
			subtotal,
			tax,
			delivery_fee,
			platform_fee,
			total,
			delivery_partner_id,
			created_at,
			updated_at,
			version
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	err := row.Scan(
		&id,
		&customerID,
		&restaurantID,
		&resp.Status,
		&resp.DeliveryType,
		&addressLine,
		&resp.PaymentMethod,
		&resp.PaymentStatus,
		&resp.Subtotal,
		&resp.Tax,
		&resp.DeliveryFee,
		&resp.PlatformFee,
		&resp.Total,
		&partnerID,
		&createdAt,
		&updatedAt,
		&resp.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return GetOrderQueryResponse{}, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.RestaurantID, err = kernel.UUIDFromBytes(restaurantID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if partnerID != nil {
		pID, pErr := kernel.UUIDFromBytes((*partnerID)[:])
		if pErr != nil {
			return GetOrderQueryResponse{}, pErr
		}
		resp.DeliveryPartnerID = &pID
	}
	if addressLine.Valid {
		line := addressLine.String
		resp.AddressLine = &line
	}
	resp.CreatedAt = createdAt
	resp.UpdatedAt = updatedAt

	items, err := h.loadItems(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.Items = items

	return resp, nil
}

func (h GetOrderQueryHandler) loadItems(ctx context.Context, orderID kernel.UUID) ([]GetOrderItemResponse, error) {
	items := make([]GetOrderItemResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			item_id,
			name,
			quantity,
			unit_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY name
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item GetOrderItemResponse
		var itemID uuid.UUID

		if err = rows.Scan(&itemID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}

		if item.ItemID, err = kernel.UUIDFromBytes(itemID[:]); err != nil {
			return nil, err
		}
		item.LineTotal = item.UnitPrice * int64(item.Quantity)
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
