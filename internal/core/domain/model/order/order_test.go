package order_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, amount int64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(amount)
	require.NoError(t, err)
	return m
}

func testAddress(t *testing.T) *order.Address {
	t.Helper()
	point, err := kernel.NewGeoPoint(12.9716, 77.5946)
	require.NoError(t, err)
	addr, err := order.NewAddress("12 MG Road", point)
	require.NoError(t, err)
	return &addr
}

func testItems(t *testing.T) []order.LineItem {
	t.Helper()
	item1, err := order.NewLineItem(kernel.NewUUID(), "Margherita", 2, money(t, 200))
	require.NoError(t, err)
	item2, err := order.NewLineItem(kernel.NewUUID(), "Garlic bread", 1, money(t, 100))
	require.NoError(t, err)
	return []order.LineItem{item1, item2}
}

func testPayment(t *testing.T) order.Payment {
	t.Helper()
	p, err := order.NewPayment("upi", order.PaymentStatusPending)
	require.NoError(t, err)
	return p
}

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		testItems(t),
		money(t, 90),
		money(t, 40),
		money(t, 10),
		order.DeliveryTypeDelivery,
		testAddress(t),
		testPayment(t),
		nil,
		time.Now(),
	)
	require.NoError(t, err)
	return o
}

// advanceTo walks the order along the fulfilment path to the wanted status.
func advanceTo(t *testing.T, o *order.Order, want order.Status) {
	t.Helper()
	admin := kernel.NewUUID()
	path := []order.Status{
		order.StatusConfirmed,
		order.StatusPreparing,
		order.StatusReadyForPickup,
		order.StatusOutForDelivery,
		order.StatusDelivered,
	}
	for _, next := range path {
		if o.Status() == want {
			return
		}
		_, err := o.ProposeTransition(next, admin, order.RoleAdmin, "", nil, time.Now())
		require.NoError(t, err)
	}
	require.Equal(t, want, o.Status())
}

func TestNewOrder(t *testing.T) {
	t.Run("should create pending order with computed totals", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.StatusPending, o.Status())
		// 2×200 + 1×100 = 500 subtotal
		assert.Equal(t, int64(500), o.Subtotal().Amount())
		// 500 + 90 tax + 40 delivery + 10 platform = 640
		assert.Equal(t, int64(640), o.Total().Amount())
		assert.Nil(t, o.DeliveryPartnerID())
		assert.Equal(t, int64(1), o.Version())
	})

	t.Run("should fail without items", func(t *testing.T) {
		_, err := order.NewOrder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			nil,
			money(t, 0), money(t, 0), money(t, 0),
			order.DeliveryTypeDelivery, testAddress(t), testPayment(t), nil, time.Now(),
		)

		require.Error(t, err)
		assert.Equal(t, order.ErrItemsRequired, err)
	})

	t.Run("should require address for delivery mode", func(t *testing.T) {
		_, err := order.NewOrder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			testItems(t),
			money(t, 0), money(t, 0), money(t, 0),
			order.DeliveryTypeDelivery, nil, testPayment(t), nil, time.Now(),
		)

		require.Error(t, err)
		assert.Equal(t, order.ErrAddressRequired, err)
	})

	t.Run("should allow pickup mode without address", func(t *testing.T) {
		o, err := order.NewOrder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			testItems(t),
			money(t, 0), money(t, 0), money(t, 0),
			order.DeliveryTypePickup, nil, testPayment(t), nil, time.Now(),
		)

		require.NoError(t, err)
		assert.Nil(t, o.Address())
	})

	t.Run("should fail with invalid customer ID", func(t *testing.T) {
		var invalidID kernel.UUID

		_, err := order.NewOrder(
			kernel.NewUUID(), invalidID, kernel.NewUUID(),
			testItems(t),
			money(t, 0), money(t, 0), money(t, 0),
			order.DeliveryTypePickup, nil, testPayment(t), nil, time.Now(),
		)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "UUID must be created")
	})
}

func TestOrder_Validate(t *testing.T) {
	t.Run("should fail validation for nil order", func(t *testing.T) {
		var o *order.Order

		err := o.Validate()

		require.Error(t, err)
		assert.Equal(t, order.ErrOrderIsNotConstructed, err)
	})

	t.Run("should fail validation for zero-value order", func(t *testing.T) {
		var o order.Order

		err := o.Validate()

		require.Error(t, err)
		assert.Equal(t, order.ErrOrderIsNotConstructed, err)
	})
}

func TestOrder_ProposeTransition(t *testing.T) {
	actor := kernel.NewUUID()

	t.Run("should accept confirmed from restaurant on pending order", func(t *testing.T) {
		o := newTestOrder(t)
		now := time.Now()

		event, err := o.ProposeTransition(order.StatusConfirmed, actor, order.RoleRestaurant, "", nil, now)

		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, order.StatusConfirmed, o.Status())
		assert.Equal(t, order.StatusConfirmed, event.Status())
		assert.Equal(t, order.RoleRestaurant, event.UserType())
		require.NotNil(t, o.Timestamps().ConfirmedAt)
		assert.Equal(t, now, *o.Timestamps().ConfirmedAt)
		assert.Equal(t, int64(2), o.Version())
	})

	t.Run("should reject restaurant skipping confirmed", func(t *testing.T) {
		o := newTestOrder(t)

		event, err := o.ProposeTransition(order.StatusPreparing, actor, order.RoleRestaurant, "", nil, time.Now())

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrInvalidState)
		assert.Nil(t, event)
		assert.Equal(t, order.StatusPending, o.Status())
	})

	t.Run("should reject role not permitted for target", func(t *testing.T) {
		o := newTestOrder(t)

		event, err := o.ProposeTransition(order.StatusConfirmed, actor, order.RoleCustomer, "", nil, time.Now())

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrAuthorization)
		assert.Nil(t, event)
		assert.Equal(t, order.StatusPending, o.Status())
	})

	t.Run("should enumerate denied role-target pairs without state change", func(t *testing.T) {
		denied := map[order.Role][]order.Status{
			order.RoleCustomer: {
				order.StatusConfirmed, order.StatusPreparing, order.StatusReadyForPickup,
				order.StatusOutForDelivery, order.StatusDelivered, order.StatusRejected, order.StatusFailed,
			},
			order.RoleRestaurant: {
				order.StatusOutForDelivery, order.StatusDelivered, order.StatusCancelled, order.StatusFailed,
			},
			order.RoleDeliveryPartner: {
				order.StatusConfirmed, order.StatusPreparing, order.StatusReadyForPickup,
				order.StatusCancelled, order.StatusRejected, order.StatusFailed,
			},
		}

		for role, targets := range denied {
			for _, target := range targets {
				o := newTestOrder(t)

				_, err := o.ProposeTransition(target, actor, role, "", nil, time.Now())

				require.Error(t, err, "role %s target %s", role, target)
				require.ErrorIs(t, err, errs.ErrAuthorization)
				assert.Equal(t, order.StatusPending, o.Status())
			}
		}
	})

	t.Run("should allow customer to cancel an out_for_delivery order", func(t *testing.T) {
		// Cancellation is gated by target status only; see the role table.
		o := newTestOrder(t)
		advanceTo(t, o, order.StatusOutForDelivery)

		event, err := o.ProposeTransition(order.StatusCancelled, actor, order.RoleCustomer, "changed my mind", nil, time.Now())

		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, order.StatusCancelled, o.Status())
		assert.Equal(t, "changed my mind", event.Reason())
		require.NotNil(t, o.Timestamps().CancelledAt)
	})

	t.Run("should be idempotent for re-proposing the current status", func(t *testing.T) {
		o := newTestOrder(t)
		advanceTo(t, o, order.StatusConfirmed)
		versionBefore := o.Version()

		event, err := o.ProposeTransition(order.StatusConfirmed, actor, order.RoleRestaurant, "", nil, time.Now())

		require.NoError(t, err)
		assert.Nil(t, event)
		assert.Equal(t, order.StatusConfirmed, o.Status())
		assert.Equal(t, versionBefore, o.Version())
	})

	t.Run("should fail with state error on every terminal status", func(t *testing.T) {
		for _, terminal := range []order.Status{
			order.StatusDelivered,
			order.StatusCancelled,
			order.StatusRejected,
			order.StatusFailed,
		} {
			o := newTestOrder(t)
			if terminal == order.StatusDelivered {
				advanceTo(t, o, order.StatusDelivered)
			} else {
				_, err := o.ProposeTransition(terminal, actor, order.RoleAdmin, "", nil, time.Now())
				require.NoError(t, err)
			}

			_, err := o.ProposeTransition(order.StatusCancelled, actor, order.RoleAdmin, "", nil, time.Now())

			require.Error(t, err, "terminal %s", terminal)
			require.ErrorIs(t, err, errs.ErrInvalidState)
			assert.Equal(t, terminal, o.Status())
		}
	})

	t.Run("should record metadata on the event", func(t *testing.T) {
		o := newTestOrder(t)

		event, err := o.ProposeTransition(order.StatusRejected, actor, order.RoleRestaurant, "out of stock",
			map[string]any{"itemId": "42"}, time.Now())

		require.NoError(t, err)
		assert.Equal(t, map[string]any{"itemId": "42"}, event.Metadata())
	})
}

func TestOrder_AssignDeliveryPartner(t *testing.T) {
	t.Run("should assign partner to delivery order", func(t *testing.T) {
		o := newTestOrder(t)
		partnerID := kernel.NewUUID()

		err := o.AssignDeliveryPartner(partnerID, time.Now())

		require.NoError(t, err)
		require.NotNil(t, o.DeliveryPartnerID())
		assert.True(t, o.DeliveryPartnerID().IsEqual(partnerID))
	})

	t.Run("should fail for pickup order", func(t *testing.T) {
		o, err := order.NewOrder(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			testItems(t),
			money(t, 0), money(t, 0), money(t, 0),
			order.DeliveryTypePickup, nil, testPayment(t), nil, time.Now(),
		)
		require.NoError(t, err)

		err = o.AssignDeliveryPartner(kernel.NewUUID(), time.Now())

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrInvalidState)
	})

	t.Run("should fail for terminal order", func(t *testing.T) {
		o := newTestOrder(t)
		_, err := o.ProposeTransition(order.StatusCancelled, kernel.NewUUID(), order.RoleAdmin, "", nil, time.Now())
		require.NoError(t, err)

		err = o.AssignDeliveryPartner(kernel.NewUUID(), time.Now())

		require.Error(t, err)
	})
}

func TestOrder_CanBeWatchedBy(t *testing.T) {
	customerID := kernel.NewUUID()
	restaurantID := kernel.NewUUID()
	partnerID := kernel.NewUUID()
	strangerID := kernel.NewUUID()

	newOrderWithParties := func(t *testing.T) *order.Order {
		t.Helper()
		o, err := order.NewOrder(
			kernel.NewUUID(), customerID, restaurantID,
			testItems(t),
			money(t, 0), money(t, 0), money(t, 0),
			order.DeliveryTypeDelivery, testAddress(t), testPayment(t), nil, time.Now(),
		)
		require.NoError(t, err)
		return o
	}

	t.Run("should allow the order's participants", func(t *testing.T) {
		o := newOrderWithParties(t)
		require.NoError(t, o.AssignDeliveryPartner(partnerID, time.Now()))

		assert.True(t, o.CanBeWatchedBy(customerID, order.RoleCustomer))
		assert.True(t, o.CanBeWatchedBy(restaurantID, order.RoleRestaurant))
		assert.True(t, o.CanBeWatchedBy(partnerID, order.RoleDeliveryPartner))
		assert.True(t, o.CanBeWatchedBy(strangerID, order.RoleAdmin))
	})

	t.Run("should deny non-participants", func(t *testing.T) {
		o := newOrderWithParties(t)

		assert.False(t, o.CanBeWatchedBy(strangerID, order.RoleCustomer))
		assert.False(t, o.CanBeWatchedBy(strangerID, order.RoleRestaurant))
		// no partner assigned yet
		assert.False(t, o.CanBeWatchedBy(partnerID, order.RoleDeliveryPartner))
	})

	t.Run("should allow group-order participants", func(t *testing.T) {
		friendID := kernel.NewUUID()
		group, err := order.NewGroupOrder("JOIN42", customerID,
			[]order.GroupParticipant{{UserID: friendID, Status: "joined"}})
		require.NoError(t, err)

		o, err := order.NewOrder(
			kernel.NewUUID(), customerID, restaurantID,
			testItems(t),
			money(t, 0), money(t, 0), money(t, 0),
			order.DeliveryTypeDelivery, testAddress(t), testPayment(t), group, time.Now(),
		)
		require.NoError(t, err)

		assert.True(t, o.CanBeWatchedBy(friendID, order.RoleCustomer))
		assert.False(t, o.CanBeWatchedBy(strangerID, order.RoleCustomer))
	})
}

func TestLineItem(t *testing.T) {
	t.Run("should compute line total", func(t *testing.T) {
		item, err := order.NewLineItem(kernel.NewUUID(), "Biryani", 3, money(t, 250))

		require.NoError(t, err)
		assert.Equal(t, int64(750), item.LineTotal().Amount())
	})

	t.Run("should fail with non-positive quantity", func(t *testing.T) {
		for _, qty := range []int{0, -1} {
			_, err := order.NewLineItem(kernel.NewUUID(), "Biryani", qty, money(t, 250))
			require.Error(t, err, "quantity %d", qty)
		}
	})

	t.Run("should fail with empty name", func(t *testing.T) {
		_, err := order.NewLineItem(kernel.NewUUID(), "", 1, money(t, 250))

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
