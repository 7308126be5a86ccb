package services_test

import (
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/partner"
	"orderflow/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPartner(t *testing.T, name string, lat, lng, rating float64) *partner.DeliveryPartner {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	p, err := partner.NewDeliveryPartner(kernel.NewUUID(), name, point, rating)
	require.NoError(t, err)
	return p
}

func TestPartnerSelector_Select(t *testing.T) {
	restaurant, err := kernel.NewGeoPoint(12.9700, 77.5900)
	require.NoError(t, err)
	selector := services.NewPartnerSelector(services.DefaultSelectionPolicy())

	t.Run("should select the nearest available partner", func(t *testing.T) {
		near := newPartner(t, "Near", 12.9710, 77.5910, 3.0)
		mid := newPartner(t, "Mid", 12.9800, 77.6000, 5.0)
		far := newPartner(t, "Far", 13.0200, 77.6400, 5.0)

		result, err := selector.Select(restaurant, []*partner.DeliveryPartner{far, mid, near}, nil)

		require.NoError(t, err)
		assert.True(t, result.IsEqual(near), "should return the nearest partner")
	})

	t.Run("should break distance ties by rating then load", func(t *testing.T) {
		lowRating := newPartner(t, "LowRating", 12.9710, 77.5910, 3.5)
		highRatingBusy := newPartner(t, "HighBusy", 12.9710, 77.5910, 4.8)
		require.NoError(t, highRatingBusy.TakeAssignment())
		highRatingIdle := newPartner(t, "HighIdle", 12.9710, 77.5910, 4.8)

		result, err := selector.Select(restaurant,
			[]*partner.DeliveryPartner{lowRating, highRatingBusy, highRatingIdle}, nil)

		require.NoError(t, err)
		assert.True(t, result.IsEqual(highRatingIdle))
	})

	t.Run("should skip unavailable partners", func(t *testing.T) {
		offline := newPartner(t, "Offline", 12.9710, 77.5910, 5.0)
		require.NoError(t, offline.SetAvailability(false))
		online := newPartner(t, "Online", 12.9900, 77.6100, 3.0)

		result, err := selector.Select(restaurant, []*partner.DeliveryPartner{offline, online}, nil)

		require.NoError(t, err)
		assert.True(t, result.IsEqual(online))
	})

	t.Run("should skip excluded partners", func(t *testing.T) {
		rejector := newPartner(t, "Rejector", 12.9710, 77.5910, 5.0)
		fallback := newPartner(t, "Fallback", 12.9900, 77.6100, 3.0)

		result, err := selector.Select(restaurant,
			[]*partner.DeliveryPartner{rejector, fallback},
			[]kernel.UUID{rejector.ID()})

		require.NoError(t, err)
		assert.True(t, result.IsEqual(fallback))
	})

	t.Run("should filter partners outside the radius", func(t *testing.T) {
		// Roughly 120 km away, well outside the default 10 km radius.
		tooFar := newPartner(t, "TooFar", 14.0000, 77.5900, 5.0)

		_, err := selector.Select(restaurant, []*partner.DeliveryPartner{tooFar}, nil)

		require.Error(t, err)
		assert.Equal(t, services.ErrNoPartnerAvailable, err)
	})

	t.Run("should fail with empty candidate pool", func(t *testing.T) {
		_, err := selector.Select(restaurant, nil, nil)

		require.Error(t, err)
		assert.Equal(t, services.ErrNoPartnerAvailable, err)
	})

	t.Run("should accept any distance with radius disabled", func(t *testing.T) {
		anywhere := services.NewPartnerSelector(services.SelectionPolicy{RadiusKm: 0})
		tooFar := newPartner(t, "TooFar", 14.0000, 77.5900, 5.0)

		result, err := anywhere.Select(restaurant, []*partner.DeliveryPartner{tooFar}, nil)

		require.NoError(t, err)
		assert.True(t, result.IsEqual(tooFar))
	})

	t.Run("should fail with an invalid candidate", func(t *testing.T) {
		var invalid partner.DeliveryPartner

		_, err := selector.Select(restaurant, []*partner.DeliveryPartner{&invalid}, nil)

		require.Error(t, err)
	})
}
