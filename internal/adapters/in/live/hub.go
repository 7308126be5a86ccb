package live

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// Hub fans messages out to live connections. It implements the broadcast
// collaborator consumed by the dispatch workers and the location handler.
type Hub struct {
	registry *ConnectionRegistry
	topics   *TopicRouter
	logger   *slog.Logger
}

// NewHub creates a hub over the given registry and topic router.
func NewHub(registry *ConnectionRegistry, topics *TopicRouter, logger *slog.Logger) *Hub {
	return &Hub{
		registry: registry,
		topics:   topics,
		logger:   logger.With("component", "live-hub"),
	}
}

// BroadcastStatus pushes an accepted transition to the order's subscribers.
// Incremental updates carry only the newest history entry.
func (h *Hub) BroadcastStatus(_ context.Context, aggregate *order.Order, event *order.StatusEvent) error {
	env, err := NewEnvelope(TypeOrderStatusUpdate, OrderStatusPayload{
		OrderID: aggregate.ID().String(),
		Status:  aggregate.Status().String(),
		History: []StatusEventPayload{statusEventPayload(event)},
	})
	if err != nil {
		return err
	}

	h.fanOutTopic(aggregate.ID(), env)
	return nil
}

// BroadcastLocation pushes a partner position to the order's subscribers.
func (h *Hub) BroadcastLocation(
	_ context.Context, orderID kernel.UUID, location assignment.PartnerLocation,
) error {
	env, err := NewEnvelope(TypeDeliveryLocationUpdate, DeliveryLocationPayload{
		OrderID: orderID.String(),
		Location: LocationPayload{
			Lat: location.Point.Lat(),
			Lng: location.Point.Lng(),
		},
		UpdatedAt: location.UpdatedAt,
	})
	if err != nil {
		return err
	}

	h.fanOutTopic(orderID, env)
	return nil
}

// BroadcastNewOrder pushes a freshly admitted order to every connection the
// owning restaurant holds.
func (h *Hub) BroadcastNewOrder(_ context.Context, aggregate *order.Order) error {
	env, err := NewEnvelope(TypeNewOrder, NewOrderPayload{
		OrderID:      aggregate.ID().String(),
		CustomerID:   aggregate.CustomerID().String(),
		Status:       aggregate.Status().String(),
		DeliveryType: aggregate.DeliveryType().String(),
		Total:        aggregate.Total().Amount(),
		ItemCount:    len(aggregate.Items()),
		CreatedAt:    aggregate.CreatedAt(),
	})
	if err != nil {
		return err
	}

	h.fanOut(aggregate.ID(), h.registry.ClientsOf(aggregate.RestaurantID()), env)
	return nil
}

// fanOutTopic delivers to topic subscribers under the topic lock, so new
// subscriptions never see a delta ahead of their snapshot.
func (h *Hub) fanOutTopic(orderID kernel.UUID, env Envelope) {
	dropped := 0
	h.topics.ForEachSubscriber(orderID, func(client *Client) {
		if !client.TrySend(env) {
			dropped++
		}
	})
	h.logDropped(orderID, env, dropped)
}

func (h *Hub) fanOut(orderID kernel.UUID, clients []*Client, env Envelope) {
	dropped := 0
	for _, client := range clients {
		if !client.TrySend(env) {
			dropped++
		}
	}
	h.logDropped(orderID, env, dropped)
}

func (h *Hub) logDropped(orderID kernel.UUID, env Envelope, dropped int) {
	if dropped > 0 {
		h.logger.Warn("dropped live messages for slow subscribers",
			"order_id", orderID.String(), "type", env.Type, "dropped", dropped)
	}
}

func statusEventPayload(event *order.StatusEvent) StatusEventPayload {
	return StatusEventPayload{
		Status:    event.Status().String(),
		ChangedBy: event.ChangedBy().String(),
		UserType:  event.UserType().String(),
		Reason:    event.Reason(),
		Metadata:  event.Metadata(),
		Timestamp: event.CreatedAt(),
	}
}
