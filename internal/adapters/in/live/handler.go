package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Handler owns the websocket endpoint: it authenticates connections, runs
// the read and write pumps, and routes client messages.
type Handler struct {
	auth            *Authenticator
	registry        *ConnectionRegistry
	topics          *TopicRouter
	uowFactory      ports.UnitOfWorkFactory
	locationHandler commands.UpdateLocationCommandHandler
	logger          *slog.Logger
	upgrader        websocket.Upgrader
}

// NewHandler creates the websocket handler.
func NewHandler(
	auth *Authenticator,
	registry *ConnectionRegistry,
	topics *TopicRouter,
	uowFactory ports.UnitOfWorkFactory,
	locationHandler commands.UpdateLocationCommandHandler,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:            auth,
		registry:        registry,
		topics:          topics,
		uowFactory:      uowFactory,
		locationHandler: locationHandler,
		logger:          logger.With("component", "live-handler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from app origins; access control
			// happens via the token, not the Origin header.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Register mounts the endpoint on the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/ws", h.serve)
}

func (h *Handler) serve(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		token = strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	}

	identity, authErr := h.auth.Authenticate(token)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	// Close after the upgrade so the client sees the application close code
	// instead of an opaque handshake failure.
	if authErr != nil {
		deadline := time.Now().Add(writeWait)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseCodeUnauthorized, "invalid token"), deadline)
		return conn.Close()
	}

	client := NewClient(identity.UserID, identity.Role)
	h.registry.Register(client)

	defer func() {
		client.Close()
		h.topics.DropClient(client)
		h.registry.Unregister(client)
		_ = conn.Close()
	}()

	go h.writePump(conn, client)
	h.readLoop(c.Request().Context(), conn, client)
	return nil
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, client *Client) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("connection closed unexpectedly",
					"user_id", client.UserID().String(), "err", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.sendError(client, "malformed message")
			continue
		}

		switch env.Type {
		case TypeSubscribeOrder:
			h.handleSubscribe(ctx, client, env.Payload)
		case TypeUnsubscribeOrder:
			h.handleUnsubscribe(client, env.Payload)
		case TypeLocationUpdate:
			h.handleLocationUpdate(ctx, client, env.Payload)
		default:
			h.sendError(client, "unknown message type")
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env := <-client.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				client.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				client.Close()
				return
			}
		case <-client.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleSubscribe authorizes the subscription against the order's
// participants and, on the first success, pushes the current status with the
// full event history so the client is not blind to what happened while it
// was away.
func (h *Handler) handleSubscribe(ctx context.Context, client *Client, payload json.RawMessage) {
	var req SubscribePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(client, "malformed subscribe payload")
		return
	}
	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		h.sendError(client, "invalid order id")
		return
	}

	repo := h.uowFactory.Create().OrderRepository()
	aggregate, err := repo.Get(ctx, orderID)
	if err != nil {
		h.sendError(client, "order not found")
		return
	}

	if !aggregate.CanBeWatchedBy(client.UserID(), client.Role()) {
		h.sendError(client, "not allowed to watch this order")
		return
	}

	// The snapshot is read and enqueued while broadcasts on the topic are
	// held off, so the client never sees a delta ahead of it.
	var snapshotErr error
	h.topics.SubscribeAndDeliver(orderID, client, func() {
		history, historyErr := repo.GetStatusHistory(ctx, orderID)
		if historyErr != nil {
			snapshotErr = historyErr
			return
		}

		events := make([]StatusEventPayload, 0, len(history))
		for _, event := range history {
			events = append(events, statusEventPayload(event))
		}

		env, envErr := NewEnvelope(TypeOrderStatusUpdate, OrderStatusPayload{
			OrderID: orderID.String(),
			Status:  aggregate.Status().String(),
			History: events,
		})
		if envErr != nil {
			snapshotErr = envErr
			return
		}
		client.TrySend(env)
	})
	if snapshotErr != nil {
		h.logger.Error("failed to deliver subscribe snapshot",
			"order_id", orderID.String(), "err", snapshotErr)
		h.sendError(client, "snapshot unavailable")
	}
}

func (h *Handler) handleUnsubscribe(client *Client, payload json.RawMessage) {
	var req SubscribePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(client, "malformed unsubscribe payload")
		return
	}
	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		h.sendError(client, "invalid order id")
		return
	}
	h.topics.Unsubscribe(orderID, client)
}

// handleLocationUpdate resolves the order's live assignment and feeds the
// position through the location command, which authorizes the sender as the
// assigned partner.
func (h *Handler) handleLocationUpdate(ctx context.Context, client *Client, payload json.RawMessage) {
	var req LocationUpdatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(client, "malformed location payload")
		return
	}
	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		h.sendError(client, "invalid order id")
		return
	}
	point, err := kernel.NewGeoPoint(req.Location.Lat, req.Location.Lng)
	if err != nil {
		h.sendError(client, "invalid location")
		return
	}

	active, err := h.uowFactory.Create().AssignmentRepository().GetActiveByOrder(ctx, orderID)
	if err != nil {
		h.sendError(client, "no live assignment for order")
		return
	}

	cmd, err := commands.NewUpdateLocationCommand(active.ID(), client.UserID(), point)
	if err != nil {
		h.sendError(client, "invalid location update")
		return
	}
	if err := h.locationHandler.Handle(ctx, cmd); err != nil {
		h.sendError(client, "location update rejected")
	}
}

func (h *Handler) sendError(client *Client, message string) {
	env, err := NewEnvelope(TypeError, ErrorPayload{Message: message})
	if err != nil {
		return
	}
	client.TrySend(env)
}
