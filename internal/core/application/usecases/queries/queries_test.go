package queries_test

import (
	"testing"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrderQuery_Valid(t *testing.T) {
	query, err := queries.NewGetOrderQuery(kernel.NewUUID())
	require.NoError(t, err)
	require.NoError(t, query.Validate())
}

func TestNewGetOrderQuery_InvalidOrderID(t *testing.T) {
	_, err := queries.NewGetOrderQuery(kernel.UUID{})
	require.Error(t, err)
}

func TestGetOrderQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetOrderQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetOrderQueryIsNotConstructed)
}

func TestNewGetOrderHistoryQuery_Valid(t *testing.T) {
	query, err := queries.NewGetOrderHistoryQuery(kernel.NewUUID())
	require.NoError(t, err)
	require.NoError(t, query.Validate())
}

func TestGetOrderHistoryQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetOrderHistoryQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetOrderHistoryQueryIsNotConstructed)
}

func TestNewGetActiveAssignmentQuery_Valid(t *testing.T) {
	query, err := queries.NewGetActiveAssignmentQuery(kernel.NewUUID())
	require.NoError(t, err)
	require.NoError(t, query.Validate())
}

func TestGetActiveAssignmentQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetActiveAssignmentQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetActiveAssignmentQueryIsNotConstructed)
}

func TestNewGetAvailablePartnersQuery_Valid(t *testing.T) {
	query := queries.NewGetAvailablePartnersQuery()
	require.NoError(t, query.Validate())
}

func TestGetAvailablePartnersQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetAvailablePartnersQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetAvailablePartnersQueryIsNotConstructed)
}
