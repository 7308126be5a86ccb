package locker_test

import (
	"sync"
	"testing"

	"orderflow/internal/pkg/locker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Run("should serialize concurrent holders of one key", func(t *testing.T) {
		m := locker.NewKeyedMutex()
		counter := 0

		var wg sync.WaitGroup
		for range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Lock("order-1")
				defer m.Unlock("order-1")
				counter++
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, counter)
	})

	t.Run("should not block different keys on each other", func(t *testing.T) {
		m := locker.NewKeyedMutex()
		m.Lock("order-1")

		done := make(chan struct{})
		go func() {
			m.Lock("order-2")
			m.Unlock("order-2")
			close(done)
		}()

		<-done // completes even though order-1 is still held
		m.Unlock("order-1")
	})
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	t.Run("should drop the map entry once the last holder unlocks", func(t *testing.T) {
		m := locker.NewKeyedMutex()

		m.Lock("order-1")
		assert.Equal(t, 1, m.Len())

		m.Unlock("order-1")
		assert.Equal(t, 0, m.Len())
	})

	t.Run("should panic on unlock of an unheld key", func(t *testing.T) {
		m := locker.NewKeyedMutex()

		require.Panics(t, func() {
			m.Unlock("order-1")
		})
	})
}
