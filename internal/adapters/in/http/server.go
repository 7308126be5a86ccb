// Package http contains the REST surface. Handlers stay thin: decode,
// build a command or query, dispatch, map the error taxonomy to a status
// code.
package http

import (
	"errors"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the JSON error body returned by every failing endpoint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler       commands.CreateOrderCommandHandler
	changeOrderStatusHandler commands.ChangeOrderStatusCommandHandler
	assignPartnerHandler     commands.AssignPartnerCommandHandler
	acceptAssignmentHandler  commands.AcceptAssignmentCommandHandler
	rejectAssignmentHandler  commands.RejectAssignmentCommandHandler
	verifyPickupOtpHandler   commands.VerifyPickupOtpCommandHandler
	verifyDeliveryOtpHandler commands.VerifyDeliveryOtpCommandHandler
	updateLocationHandler    commands.UpdateLocationCommandHandler
	createPartnerHandler     commands.CreatePartnerCommandHandler

	// Query handlers
	getOrderHandler             queries.GetOrderQueryHandler
	getOrderHistoryHandler      queries.GetOrderHistoryQueryHandler
	getActiveAssignmentHandler  queries.GetActiveAssignmentQueryHandler
	getAvailablePartnersHandler queries.GetAvailablePartnersQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	changeOrderStatusHandler commands.ChangeOrderStatusCommandHandler,
	assignPartnerHandler commands.AssignPartnerCommandHandler,
	acceptAssignmentHandler commands.AcceptAssignmentCommandHandler,
	rejectAssignmentHandler commands.RejectAssignmentCommandHandler,
	verifyPickupOtpHandler commands.VerifyPickupOtpCommandHandler,
	verifyDeliveryOtpHandler commands.VerifyDeliveryOtpCommandHandler,
	updateLocationHandler commands.UpdateLocationCommandHandler,
	createPartnerHandler commands.CreatePartnerCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getOrderHistoryHandler queries.GetOrderHistoryQueryHandler,
	getActiveAssignmentHandler queries.GetActiveAssignmentQueryHandler,
	getAvailablePartnersHandler queries.GetAvailablePartnersQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:          createOrderHandler,
		changeOrderStatusHandler:    changeOrderStatusHandler,
		assignPartnerHandler:        assignPartnerHandler,
		acceptAssignmentHandler:     acceptAssignmentHandler,
		rejectAssignmentHandler:     rejectAssignmentHandler,
		verifyPickupOtpHandler:      verifyPickupOtpHandler,
		verifyDeliveryOtpHandler:    verifyDeliveryOtpHandler,
		updateLocationHandler:       updateLocationHandler,
		createPartnerHandler:        createPartnerHandler,
		getOrderHandler:             getOrderHandler,
		getOrderHistoryHandler:      getOrderHistoryHandler,
		getActiveAssignmentHandler:  getActiveAssignmentHandler,
		getAvailablePartnersHandler: getAvailablePartnersHandler,
	}
}

// RegisterRoutes mounts every endpoint on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/history", s.GetOrderHistory)
	api.POST("/orders/:id/status", s.ChangeOrderStatus)
	api.POST("/orders/:id/assignment", s.AssignPartner)
	api.GET("/orders/:id/assignment", s.GetActiveAssignment)

	api.POST("/assignments/:id/accept", s.AcceptAssignment)
	api.POST("/assignments/:id/reject", s.RejectAssignment)
	api.POST("/assignments/:id/pickup/verify", s.VerifyPickupOtp)
	api.POST("/assignments/:id/delivery/verify", s.VerifyDeliveryOtp)
	api.POST("/assignments/:id/location", s.UpdateLocation)

	api.GET("/partners", s.GetAvailablePartners)
	api.POST("/partners", s.CreatePartner)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type lineItemRequest struct {
	ItemID    string `json:"itemId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

type addressRequest struct {
	Line string  `json:"line"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type groupParticipantRequest struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type groupOrderRequest struct {
	Code         string                    `json:"code"`
	HostID       string                    `json:"hostId"`
	Participants []groupParticipantRequest `json:"participants"`
}

type createOrderRequest struct {
	CustomerID    string             `json:"customerId"`
	RestaurantID  string             `json:"restaurantId"`
	Items         []lineItemRequest  `json:"items"`
	Tax           int64              `json:"tax"`
	DeliveryFee   int64              `json:"deliveryFee"`
	PlatformFee   int64              `json:"platformFee"`
	DeliveryType  string             `json:"deliveryType"`
	Address       *addressRequest    `json:"address,omitempty"`
	PaymentMethod string             `json:"paymentMethod"`
	GroupOrder    *groupOrderRequest `json:"groupOrder,omitempty"`
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req createOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := s.buildCreateOrderCommand(req)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]string{"orderId": cmd.OrderID().String()})
}

func (s *Server) buildCreateOrderCommand(req createOrderRequest) (commands.CreateOrderCommand, error) {
	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	restaurantID, err := kernel.UUIDFromString(req.RestaurantID)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	items := make([]order.LineItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		itemID, itemErr := kernel.UUIDFromString(itemReq.ItemID)
		if itemErr != nil {
			return commands.CreateOrderCommand{}, itemErr
		}
		unitPrice, itemErr := kernel.NewMoney(itemReq.UnitPrice)
		if itemErr != nil {
			return commands.CreateOrderCommand{}, itemErr
		}
		item, itemErr := order.NewLineItem(itemID, itemReq.Name, itemReq.Quantity, unitPrice)
		if itemErr != nil {
			return commands.CreateOrderCommand{}, itemErr
		}
		items = append(items, item)
	}

	tax, err := kernel.NewMoney(req.Tax)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	deliveryFee, err := kernel.NewMoney(req.DeliveryFee)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	platformFee, err := kernel.NewMoney(req.PlatformFee)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	deliveryType, err := order.DeliveryTypeFromString(req.DeliveryType)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	var address *order.Address
	if req.Address != nil {
		point, addrErr := kernel.NewGeoPoint(req.Address.Lat, req.Address.Lng)
		if addrErr != nil {
			return commands.CreateOrderCommand{}, addrErr
		}
		built, addrErr := order.NewAddress(req.Address.Line, point)
		if addrErr != nil {
			return commands.CreateOrderCommand{}, addrErr
		}
		address = &built
	}

	payment, err := order.NewPayment(req.PaymentMethod, order.PaymentStatusPending)
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	var groupOrder *order.GroupOrder
	if req.GroupOrder != nil {
		hostID, groupErr := kernel.UUIDFromString(req.GroupOrder.HostID)
		if groupErr != nil {
			return commands.CreateOrderCommand{}, groupErr
		}
		participants := make([]order.GroupParticipant, 0, len(req.GroupOrder.Participants))
		for _, participantReq := range req.GroupOrder.Participants {
			userID, participantErr := kernel.UUIDFromString(participantReq.UserID)
			if participantErr != nil {
				return commands.CreateOrderCommand{}, participantErr
			}
			participants = append(participants, order.GroupParticipant{
				UserID: userID,
				Status: participantReq.Status,
			})
		}
		groupOrder, err = order.NewGroupOrder(req.GroupOrder.Code, hostID, participants)
		if err != nil {
			return commands.CreateOrderCommand{}, err
		}
	}

	return commands.NewCreateOrderCommand(
		kernel.NewUUID(), customerID, restaurantID, items,
		tax, deliveryFee, platformFee, deliveryType, address, payment, groupOrder)
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	response, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOrderHistory handles GET /api/v1/orders/:id/history.
func (s *Server) GetOrderHistory(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetOrderHistoryQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	response, err := s.getOrderHistoryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, response)
}

type changeStatusRequest struct {
	Status   string         `json:"status"`
	ActorID  string         `json:"actorId"`
	Role     string         `json:"role"`
	Reason   string         `json:"reason,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ChangeOrderStatus handles POST /api/v1/orders/:id/status.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req changeStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := order.StatusFromString(req.Status)
	if err != nil {
		return badRequest(ctx, "Invalid status: "+req.Status)
	}
	actorID, err := kernel.UUIDFromString(req.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor id")
	}
	role, err := order.RoleFromString(req.Role)
	if err != nil {
		return badRequest(ctx, "Invalid role: "+req.Role)
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, target, actorID, role, req.Reason, req.Metadata)
	if err != nil {
		return badRequest(ctx, "Invalid transition data: "+err.Error())
	}

	if err := s.changeOrderStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type assignPartnerRequest struct {
	PartnerID *string `json:"partnerId,omitempty"`
}

// AssignPartner handles POST /api/v1/orders/:id/assignment.
func (s *Server) AssignPartner(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	var req assignPartnerRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	var partnerID *kernel.UUID
	if req.PartnerID != nil {
		parsed, parseErr := kernel.UUIDFromString(*req.PartnerID)
		if parseErr != nil {
			return badRequest(ctx, "Invalid partner id")
		}
		partnerID = &parsed
	}

	cmd, err := commands.NewAssignPartnerCommand(orderID, partnerID)
	if err != nil {
		return badRequest(ctx, "Invalid assignment data: "+err.Error())
	}

	if err := s.assignPartnerHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusCreated)
}

// GetActiveAssignment handles GET /api/v1/orders/:id/assignment.
func (s *Server) GetActiveAssignment(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetActiveAssignmentQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	response, err := s.getActiveAssignmentHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, response)
}

type respondAssignmentRequest struct {
	PartnerID string `json:"partnerId"`
	Reason    string `json:"reason,omitempty"`
}

// AcceptAssignment handles POST /api/v1/assignments/:id/accept.
func (s *Server) AcceptAssignment(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid assignment id")
	}

	var req respondAssignmentRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	partnerID, err := kernel.UUIDFromString(req.PartnerID)
	if err != nil {
		return badRequest(ctx, "Invalid partner id")
	}

	cmd, err := commands.NewAcceptAssignmentCommand(assignmentID, partnerID)
	if err != nil {
		return badRequest(ctx, "Invalid acceptance data: "+err.Error())
	}

	if err := s.acceptAssignmentHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// RejectAssignment handles POST /api/v1/assignments/:id/reject.
func (s *Server) RejectAssignment(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid assignment id")
	}

	var req respondAssignmentRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	partnerID, err := kernel.UUIDFromString(req.PartnerID)
	if err != nil {
		return badRequest(ctx, "Invalid partner id")
	}

	cmd, err := commands.NewRejectAssignmentCommand(assignmentID, partnerID, req.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid rejection data: "+err.Error())
	}

	if err := s.rejectAssignmentHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type verifyOtpRequest struct {
	PartnerID string `json:"partnerId"`
	Code      string `json:"code"`
}

// VerifyPickupOtp handles POST /api/v1/assignments/:id/pickup/verify.
func (s *Server) VerifyPickupOtp(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid assignment id")
	}

	var req verifyOtpRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	partnerID, err := kernel.UUIDFromString(req.PartnerID)
	if err != nil {
		return badRequest(ctx, "Invalid partner id")
	}

	cmd, err := commands.NewVerifyPickupOtpCommand(assignmentID, partnerID, req.Code)
	if err != nil {
		return badRequest(ctx, "Invalid verification data: "+err.Error())
	}

	if err := s.verifyPickupOtpHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// VerifyDeliveryOtp handles POST /api/v1/assignments/:id/delivery/verify.
func (s *Server) VerifyDeliveryOtp(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid assignment id")
	}

	var req verifyOtpRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	partnerID, err := kernel.UUIDFromString(req.PartnerID)
	if err != nil {
		return badRequest(ctx, "Invalid partner id")
	}

	cmd, err := commands.NewVerifyDeliveryOtpCommand(assignmentID, partnerID, req.Code)
	if err != nil {
		return badRequest(ctx, "Invalid verification data: "+err.Error())
	}

	if err := s.verifyDeliveryOtpHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

type updateLocationRequest struct {
	PartnerID string  `json:"partnerId"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// UpdateLocation handles POST /api/v1/assignments/:id/location.
func (s *Server) UpdateLocation(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid assignment id")
	}

	var req updateLocationRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	partnerID, err := kernel.UUIDFromString(req.PartnerID)
	if err != nil {
		return badRequest(ctx, "Invalid partner id")
	}
	point, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid location")
	}

	cmd, err := commands.NewUpdateLocationCommand(assignmentID, partnerID, point)
	if err != nil {
		return badRequest(ctx, "Invalid location data: "+err.Error())
	}

	if err := s.updateLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetAvailablePartners handles GET /api/v1/partners.
func (s *Server) GetAvailablePartners(ctx echo.Context) error {
	query := queries.NewGetAvailablePartnersQuery()

	response, err := s.getAvailablePartnersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, response)
}

type createPartnerRequest struct {
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Rating float64 `json:"rating"`
}

// CreatePartner handles POST /api/v1/partners.
func (s *Server) CreatePartner(ctx echo.Context) error {
	var req createPartnerRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	point, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid location")
	}

	partnerID := kernel.NewUUID()
	cmd, err := commands.NewCreatePartnerCommand(partnerID, req.Name, point, req.Rating)
	if err != nil {
		return badRequest(ctx, "Invalid partner data: "+err.Error())
	}

	if err := s.createPartnerHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, map[string]string{"partnerId": partnerID.String()})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrQuotaExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrVersionIsInvalid),
		errors.Is(err, services.ErrNoPartnerAvailable):
		status = http.StatusConflict
	case errors.Is(err, ports.ErrOtpLocked):
		status = http.StatusLocked
	case errors.Is(err, ports.ErrOtpMismatch),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		status = http.StatusBadRequest
	}

	return ctx.JSON(status, Error{Code: status, Message: err.Error()})
}
