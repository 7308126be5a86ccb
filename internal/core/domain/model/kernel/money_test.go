package kernel_test

import (
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("should create money from minor units", func(t *testing.T) {
		m, err := kernel.NewMoney(50000)

		require.NoError(t, err)
		assert.Equal(t, int64(50000), m.Amount())
	})

	t.Run("should accept zero", func(t *testing.T) {
		m, err := kernel.NewMoney(0)

		require.NoError(t, err)
		assert.True(t, m.IsEqual(kernel.ZeroMoney()))
	})

	t.Run("should fail for negative amount", func(t *testing.T) {
		_, err := kernel.NewMoney(-1)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("should add amounts", func(t *testing.T) {
		a, _ := kernel.NewMoney(500)
		b, _ := kernel.NewMoney(140)

		assert.Equal(t, int64(640), a.Add(b).Amount())
	})

	t.Run("should multiply by quantity", func(t *testing.T) {
		unit, _ := kernel.NewMoney(250)

		total, err := unit.MulQty(3)

		require.NoError(t, err)
		assert.Equal(t, int64(750), total.Amount())
	})

	t.Run("should fail multiplying by negative quantity", func(t *testing.T) {
		unit, _ := kernel.NewMoney(250)

		_, err := unit.MulQty(-1)

		require.Error(t, err)
	})

	t.Run("should multiply by zero quantity", func(t *testing.T) {
		unit, _ := kernel.NewMoney(250)

		total, err := unit.MulQty(0)

		require.NoError(t, err)
		assert.Equal(t, int64(0), total.Amount())
	})
}
