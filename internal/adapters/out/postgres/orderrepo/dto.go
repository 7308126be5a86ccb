// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, handling conversion between the domain model and the relational
// schema, including the line items and the append-only status event log.
package orderrepo

import (
	"encoding/json"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Line items and group participants live in child tables keyed by the order;
// status events are stored separately and never joined into the aggregate row.
type OrderDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index"`
	RestaurantID uuid.UUID `gorm:"type:uuid;index"`

	Status       string `gorm:"index"`
	DeliveryType string

	AddressLine *string
	AddressLat  *float64
	AddressLng  *float64

	DeliveryPartnerID *uuid.UUID `gorm:"type:uuid;index"`

	Subtotal    int64
	Tax         int64
	DeliveryFee int64
	PlatformFee int64
	Total       int64

	PaymentMethod string
	PaymentStatus string

	GroupCode   *string
	GroupHostID *uuid.UUID `gorm:"type:uuid"`

	ConfirmedAt          *time.Time
	PreparationStartedAt *time.Time
	ReadyForPickupAt     *time.Time
	OutForDeliveryAt     *time.Time
	DeliveredAt          *time.Time
	CancelledAt          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64

	Items        []OrderItemDTO        `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	Participants []GroupParticipantDTO `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO represents one persisted line item. Line items are immutable
// after order creation; they are written once and only ever read back.
type OrderItemDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string
	Quantity  int
	UnitPrice int64
}

// TableName specifies the database table name for order line items.
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// GroupParticipantDTO represents one member of a group order.
type GroupParticipantDTO struct {
	OrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status  string
}

// TableName specifies the database table name for group order participants.
func (GroupParticipantDTO) TableName() string {
	return "order_group_participants"
}

// StatusEventDTO represents one persisted status transition. Rows are
// append-only; they are never updated or deleted.
type StatusEventDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	Status    string
	ChangedBy uuid.UUID `gorm:"type:uuid"`
	UserType  string
	Reason    string
	Metadata  []byte `gorm:"type:jsonb"`
	CreatedAt time.Time
}

// TableName specifies the database table name for status events.
func (StatusEventDTO) TableName() string {
	return "order_status_events"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:            aggregate.ID().Bytes(),
		CustomerID:    aggregate.CustomerID().Bytes(),
		RestaurantID:  aggregate.RestaurantID().Bytes(),
		Status:        aggregate.Status().String(),
		DeliveryType:  aggregate.DeliveryType().String(),
		Subtotal:      aggregate.Subtotal().Amount(),
		Tax:           aggregate.Tax().Amount(),
		DeliveryFee:   aggregate.DeliveryFee().Amount(),
		PlatformFee:   aggregate.PlatformFee().Amount(),
		Total:         aggregate.Total().Amount(),
		PaymentMethod: aggregate.Payment().Method(),
		PaymentStatus: aggregate.Payment().Status().String(),
		CreatedAt:     aggregate.CreatedAt(),
		UpdatedAt:     aggregate.UpdatedAt(),
		Version:       aggregate.Version(),
	}

	if address := aggregate.Address(); address != nil {
		line := address.Line()
		lat := address.Point().Lat()
		lng := address.Point().Lng()
		dto.AddressLine = &line
		dto.AddressLat = &lat
		dto.AddressLng = &lng
	}

	if partnerID := aggregate.DeliveryPartnerID(); partnerID != nil {
		raw := partnerID.Bytes()
		dto.DeliveryPartnerID = &raw
	}

	if group := aggregate.GroupOrder(); group != nil {
		code := group.Code()
		hostID := group.HostID().Bytes()
		dto.GroupCode = &code
		dto.GroupHostID = &hostID
		for _, p := range group.Participants() {
			dto.Participants = append(dto.Participants, GroupParticipantDTO{
				OrderID: dto.ID,
				UserID:  p.UserID.Bytes(),
				Status:  p.Status,
			})
		}
	}

	timestamps := aggregate.Timestamps()
	dto.ConfirmedAt = timestamps.ConfirmedAt
	dto.PreparationStartedAt = timestamps.PreparationStartedAt
	dto.ReadyForPickupAt = timestamps.ReadyForPickupAt
	dto.OutForDeliveryAt = timestamps.OutForDeliveryAt
	dto.DeliveredAt = timestamps.DeliveredAt
	dto.CancelledAt = timestamps.CancelledAt

	for _, item := range aggregate.Items() {
		dto.Items = append(dto.Items, OrderItemDTO{
			OrderID:   dto.ID,
			ItemID:    item.ItemID().Bytes(),
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().Amount(),
		})
	}

	return dto
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}
	deliveryType, err := order.DeliveryTypeFromString(dto.DeliveryType)
	if err != nil {
		return nil, err
	}

	items := make([]order.LineItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemFromDTO(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	subtotal, err := kernel.NewMoney(dto.Subtotal)
	if err != nil {
		return nil, err
	}
	tax, err := kernel.NewMoney(dto.Tax)
	if err != nil {
		return nil, err
	}
	deliveryFee, err := kernel.NewMoney(dto.DeliveryFee)
	if err != nil {
		return nil, err
	}
	platformFee, err := kernel.NewMoney(dto.PlatformFee)
	if err != nil {
		return nil, err
	}
	total, err := kernel.NewMoney(dto.Total)
	if err != nil {
		return nil, err
	}

	var address *order.Address
	if dto.AddressLine != nil && dto.AddressLat != nil && dto.AddressLng != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.AddressLat, *dto.AddressLng)
		if pointErr != nil {
			return nil, pointErr
		}
		addr, addrErr := order.NewAddress(*dto.AddressLine, point)
		if addrErr != nil {
			return nil, addrErr
		}
		address = &addr
	}

	var partnerID *kernel.UUID
	if dto.DeliveryPartnerID != nil {
		pID, pErr := kernel.UUIDFromBytes((*dto.DeliveryPartnerID)[:])
		if pErr != nil {
			return nil, pErr
		}
		partnerID = &pID
	}

	paymentStatus, err := order.PaymentStatusFromString(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}
	payment, err := order.NewPayment(dto.PaymentMethod, paymentStatus)
	if err != nil {
		return nil, err
	}

	var groupOrder *order.GroupOrder
	if dto.GroupCode != nil && dto.GroupHostID != nil {
		hostID, hostErr := kernel.UUIDFromBytes((*dto.GroupHostID)[:])
		if hostErr != nil {
			return nil, hostErr
		}
		participants := make([]order.GroupParticipant, 0, len(dto.Participants))
		for _, p := range dto.Participants {
			userID, userErr := kernel.UUIDFromBytes(p.UserID[:])
			if userErr != nil {
				return nil, userErr
			}
			participants = append(participants, order.GroupParticipant{UserID: userID, Status: p.Status})
		}
		groupOrder, err = order.NewGroupOrder(*dto.GroupCode, hostID, participants)
		if err != nil {
			return nil, err
		}
	}

	timestamps := order.Timestamps{
		ConfirmedAt:          dto.ConfirmedAt,
		PreparationStartedAt: dto.PreparationStartedAt,
		ReadyForPickupAt:     dto.ReadyForPickupAt,
		OutForDeliveryAt:     dto.OutForDeliveryAt,
		DeliveredAt:          dto.DeliveredAt,
		CancelledAt:          dto.CancelledAt,
	}

	return order.RestoreOrder(
		id, customerID, restaurantID,
		items, subtotal, tax, deliveryFee, platformFee, total,
		status, deliveryType, address, partnerID, payment, groupOrder,
		timestamps, dto.CreatedAt, dto.UpdatedAt, dto.Version,
	)
}

func itemFromDTO(dto OrderItemDTO) (order.LineItem, error) {
	itemID, err := kernel.UUIDFromBytes(dto.ItemID[:])
	if err != nil {
		return order.LineItem{}, err
	}
	unitPrice, err := kernel.NewMoney(dto.UnitPrice)
	if err != nil {
		return order.LineItem{}, err
	}
	return order.NewLineItem(itemID, dto.Name, dto.Quantity, unitPrice)
}

// eventFromDomain converts a status event to its database representation.
func eventFromDomain(event *order.StatusEvent) (StatusEventDTO, error) {
	var metadata []byte
	if meta := event.Metadata(); len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			return StatusEventDTO{}, err
		}
		metadata = raw
	}

	return StatusEventDTO{
		ID:        event.ID().Bytes(),
		OrderID:   event.OrderID().Bytes(),
		Status:    event.Status().String(),
		ChangedBy: event.ChangedBy().Bytes(),
		UserType:  event.UserType().String(),
		Reason:    event.Reason(),
		Metadata:  metadata,
		CreatedAt: event.CreatedAt(),
	}, nil
}

// eventToDomain converts a database DTO to a status event.
func eventToDomain(dto StatusEventDTO) (*order.StatusEvent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	changedBy, err := kernel.UUIDFromBytes(dto.ChangedBy[:])
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}
	userType, err := order.RoleFromString(dto.UserType)
	if err != nil {
		return nil, err
	}

	var metadata map[string]any
	if len(dto.Metadata) > 0 {
		if err = json.Unmarshal(dto.Metadata, &metadata); err != nil {
			return nil, err
		}
	}

	return order.NewStatusEvent(id, orderID, status, changedBy, userType, dto.Reason, metadata, dto.CreatedAt)
}
