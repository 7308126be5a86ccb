package commands_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/assignment"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/partner"
	"orderflow/internal/core/domain/model/quota"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}
func (m *MockOrderRepository) AppendStatusEvent(ctx context.Context, e *order.StatusEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockOrderRepository) GetStatusHistory(ctx context.Context, orderID kernel.UUID) ([]*order.StatusEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.StatusEvent), args.Error(1)
}
func (m *MockOrderRepository) GetAllActiveByRestaurant(ctx context.Context, restaurantID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockAssignmentRepository struct{ mock.Mock }

func (m *MockAssignmentRepository) Add(ctx context.Context, a *assignment.DeliveryAssignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockAssignmentRepository) Update(ctx context.Context, a *assignment.DeliveryAssignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.DeliveryAssignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.DeliveryAssignment), args.Error(1)
}
func (m *MockAssignmentRepository) GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.DeliveryAssignment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.DeliveryAssignment), args.Error(1)
}
func (m *MockAssignmentRepository) GetAllAssignedBefore(ctx context.Context, cutoff time.Time) ([]*assignment.DeliveryAssignment, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*assignment.DeliveryAssignment), args.Error(1)
}
func (m *MockAssignmentRepository) GetDeclinedPartnerIDs(ctx context.Context, orderID kernel.UUID) ([]kernel.UUID, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockPartnerRepository struct{ mock.Mock }

func (m *MockPartnerRepository) Add(ctx context.Context, p *partner.DeliveryPartner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPartnerRepository) Update(ctx context.Context, p *partner.DeliveryPartner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPartnerRepository) Get(ctx context.Context, id kernel.UUID) (*partner.DeliveryPartner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.DeliveryPartner), args.Error(1)
}
func (m *MockPartnerRepository) FindAvailable(ctx context.Context, near kernel.GeoPoint, radiusKm float64) ([]*partner.DeliveryPartner, error) {
	args := m.Called(ctx, near, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*partner.DeliveryPartner), args.Error(1)
}

type MockQuotaRepository struct{ mock.Mock }

func (m *MockQuotaRepository) Add(ctx context.Context, q *quota.SubscriptionQuota) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}
func (m *MockQuotaRepository) Update(ctx context.Context, q *quota.SubscriptionQuota) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}
func (m *MockQuotaRepository) GetActiveByRestaurant(ctx context.Context, restaurantID kernel.UUID, now time.Time) (*quota.SubscriptionQuota, error) {
	args := m.Called(ctx, restaurantID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quota.SubscriptionQuota), args.Error(1)
}
func (m *MockQuotaRepository) Consume(ctx context.Context, restaurantID kernel.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, restaurantID, now)
	return args.Bool(0), args.Error(1)
}

// MockUoW implements every unit-of-work shape the handlers use.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}
func (m *MockUoW) AssignmentRepository() ports.AssignmentRepository {
	args := m.Called()
	return args.Get(0).(ports.AssignmentRepository)
}
func (m *MockUoW) PartnerRepository() ports.PartnerRepository {
	args := m.Called()
	return args.Get(0).(ports.PartnerRepository)
}
func (m *MockUoW) QuotaRepository() ports.QuotaRepository {
	args := m.Called()
	return args.Get(0).(ports.QuotaRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockAdmissionUoWFactory struct{ mock.Mock }

func (m *MockAdmissionUoWFactory) Create() commands.AdmissionUoW {
	args := m.Called()
	return args.Get(0).(commands.AdmissionUoW)
}

type MockAssignmentUoWFactory struct{ mock.Mock }

func (m *MockAssignmentUoWFactory) Create() commands.AssignmentUoW {
	args := m.Called()
	return args.Get(0).(commands.AssignmentUoW)
}

type MockPartnerUoWFactory struct{ mock.Mock }

func (m *MockPartnerUoWFactory) Create() commands.PartnerUoW {
	args := m.Called()
	return args.Get(0).(commands.PartnerUoW)
}

type MockDispatchQueue struct{ mock.Mock }

func (m *MockDispatchQueue) EnqueueStatusChanged(ctx context.Context, o *order.Order, e *order.StatusEvent) error {
	args := m.Called(ctx, o, e)
	return args.Error(0)
}
func (m *MockDispatchQueue) EnqueueNewOrder(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockNotificationGateway struct{ mock.Mock }

func (m *MockNotificationGateway) Dispatch(ctx context.Context, userID kernel.UUID, title, body string, data map[string]any) error {
	args := m.Called(ctx, userID, title, body, data)
	return args.Error(0)
}

type MockPaymentAuthority struct{ mock.Mock }

func (m *MockPaymentAuthority) IsPaid(ctx context.Context, orderID kernel.UUID) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

type MockOtpStore struct{ mock.Mock }

func (m *MockOtpStore) Issue(ctx context.Context, assignmentID kernel.UUID, step ports.OtpStep, code string, ttl time.Duration) error {
	args := m.Called(ctx, assignmentID, step, code, ttl)
	return args.Error(0)
}
func (m *MockOtpStore) Verify(ctx context.Context, assignmentID kernel.UUID, step ports.OtpStep, code string) error {
	args := m.Called(ctx, assignmentID, step, code)
	return args.Error(0)
}

type MockBroadcaster struct{ mock.Mock }

func (m *MockBroadcaster) BroadcastStatus(ctx context.Context, o *order.Order, e *order.StatusEvent) error {
	args := m.Called(ctx, o, e)
	return args.Error(0)
}
func (m *MockBroadcaster) BroadcastLocation(ctx context.Context, orderID kernel.UUID, location assignment.PartnerLocation) error {
	args := m.Called(ctx, orderID, location)
	return args.Error(0)
}
func (m *MockBroadcaster) BroadcastNewOrder(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

type MockRequeuer struct{ mock.Mock }

func (m *MockRequeuer) Handle(ctx context.Context, cmd commands.AssignPartnerCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

// Domain fixtures shared by the handler tests.

func fixtureMoney(t *testing.T, amount int64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(amount)
	require.NoError(t, err)
	return m
}

func fixturePoint(t *testing.T) kernel.GeoPoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(12.9716, 77.5946)
	require.NoError(t, err)
	return point
}

func fixtureItems(t *testing.T) []order.LineItem {
	t.Helper()
	item, err := order.NewLineItem(kernel.NewUUID(), "Margherita", 2, fixtureMoney(t, 250))
	require.NoError(t, err)
	return []order.LineItem{item}
}

func fixtureAddress(t *testing.T) *order.Address {
	t.Helper()
	addr, err := order.NewAddress("12 MG Road", fixturePoint(t))
	require.NoError(t, err)
	return &addr
}

func fixturePayment(t *testing.T) order.Payment {
	t.Helper()
	p, err := order.NewPayment("upi", order.PaymentStatusPending)
	require.NoError(t, err)
	return p
}

func fixtureOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		fixtureItems(t),
		fixtureMoney(t, 90), fixtureMoney(t, 40), fixtureMoney(t, 10),
		order.DeliveryTypeDelivery, fixtureAddress(t), fixturePayment(t), nil, time.Now())
	require.NoError(t, err)
	return o
}

func fixtureAssignment(t *testing.T, orderID, partnerID kernel.UUID) *assignment.DeliveryAssignment {
	t.Helper()
	record, err := assignment.NewDeliveryAssignment(kernel.NewUUID(), orderID, partnerID, time.Now().UTC())
	require.NoError(t, err)
	return record
}

func fixtureQuota(t *testing.T, restaurantID kernel.UUID, orderLimit int) *quota.SubscriptionQuota {
	t.Helper()
	start := time.Now().Add(-time.Hour)
	q, err := quota.NewSubscriptionQuota(restaurantID, "standard", orderLimit, start, start.Add(30*24*time.Hour))
	require.NoError(t, err)
	return q
}

func fixtureCreateOrderCommand(t *testing.T) commands.CreateOrderCommand {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		fixtureItems(t),
		fixtureMoney(t, 90), fixtureMoney(t, 40), fixtureMoney(t, 10),
		order.DeliveryTypeDelivery, fixtureAddress(t), fixturePayment(t), nil)
	require.NoError(t, err)
	return cmd
}
