package devices

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestShutdownHook_RunsInReverseOrder(t *testing.T) {
	hook := NewShutdownHook()

	var order []string
	hook.Register("pool", func() error {
		order = append(order, "pool")
		return nil
	})
	hook.RegisterCloser("session", closerFunc(func() error {
		order = append(order, "session")
		return nil
	}))
	require.Equal(t, 2, hook.Count())

	require.NoError(t, hook.Shutdown())
	assert.Equal(t, []string{"session", "pool"}, order)
	assert.Equal(t, 0, hook.Count())
}

func TestShutdownHook_ContinuesAfterFailure(t *testing.T) {
	hook := NewShutdownHook()
	cleanupErr := errors.New("cleanup failed")

	ran := 0
	hook.Register("first", func() error { ran++; return nil })
	hook.Register("failing", func() error { ran++; return cleanupErr })
	hook.Register("last", func() error { ran++; return nil })

	err := hook.Shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, cleanupErr)
	assert.Contains(t, err.Error(), "failing")
	assert.Equal(t, 3, ran)
	assert.Equal(t, 0, hook.Count())
}

func TestShutdownHook_EmptyShutdown(t *testing.T) {
	assert.NoError(t, NewShutdownHook().Shutdown())
}

func TestShutdownHook_ConcurrentRegister(t *testing.T) {
	hook := NewShutdownHook()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			hook.Register(fmt.Sprintf("hook-%d", n), func() error { return nil })
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, hook.Count())
}
