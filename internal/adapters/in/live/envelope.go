// Package live contains the websocket order-tracking channel: connection
// registry, topic routing, subscriber authorization and the fan-out hub.
package live

import (
	"encoding/json"
	"time"
)

// Server to client message types.
const (
	TypeOrderStatusUpdate      = "ORDER_STATUS_UPDATE"
	TypeDeliveryLocationUpdate = "DELIVERY_LOCATION_UPDATE"
	TypeNewOrder               = "NEW_ORDER"
	TypeError                  = "ERROR"
)

// Client to server message types.
const (
	TypeSubscribeOrder   = "SUBSCRIBE_ORDER"
	TypeUnsubscribeOrder = "UNSUBSCRIBE_ORDER"
	TypeLocationUpdate   = "LOCATION_UPDATE"
)

// Envelope is the wire frame for every message in either direction.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload into an envelope of the given type.
func NewEnvelope(msgType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: msgType, Payload: raw}, nil
}

// StatusEventPayload is one history entry inside a status update.
type StatusEventPayload struct {
	Status    string         `json:"status"`
	ChangedBy string         `json:"changedBy"`
	UserType  string         `json:"userType"`
	Reason    string         `json:"reason,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// OrderStatusPayload is the ORDER_STATUS_UPDATE payload. On the first
// subscription push History carries the full event list; incremental updates
// carry only the newest event.
type OrderStatusPayload struct {
	OrderID string               `json:"orderId"`
	Status  string               `json:"status"`
	History []StatusEventPayload `json:"history"`
}

// LocationPayload is a geographic position on the wire.
type LocationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DeliveryLocationPayload is the DELIVERY_LOCATION_UPDATE payload.
type DeliveryLocationPayload struct {
	OrderID   string          `json:"orderId"`
	Location  LocationPayload `json:"location"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewOrderPayload is the restaurant-directed NEW_ORDER payload.
type NewOrderPayload struct {
	OrderID      string    `json:"orderId"`
	CustomerID   string    `json:"customerId"`
	Status       string    `json:"status"`
	DeliveryType string    `json:"deliveryType"`
	Total        int64     `json:"total"`
	ItemCount    int       `json:"itemCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ErrorPayload is the ERROR payload.
type ErrorPayload struct {
	Message string `json:"message"`
}

// SubscribePayload is the SUBSCRIBE_ORDER and UNSUBSCRIBE_ORDER payload.
type SubscribePayload struct {
	OrderID string `json:"orderId"`
}

// LocationUpdatePayload is the client LOCATION_UPDATE payload.
type LocationUpdatePayload struct {
	OrderID  string          `json:"orderId"`
	Location LocationPayload `json:"location"`
}
