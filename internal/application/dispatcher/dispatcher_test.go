package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/domain/command"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) HasInfo(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range m.infos {
		if info == msg {
			return true
		}
	}
	return false
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("runs handlers in order", func(t *testing.T) {
		d := NewDispatcher()
		var order []string
		d.SubscribeNamed(command.TypeOpenSection, "first", func(ctx context.Context, cmd *command.Command) error {
			order = append(order, "first")
			return nil
		})
		d.SubscribeNamed(command.TypeOpenSection, "second", func(ctx context.Context, cmd *command.Command) error {
			order = append(order, "second")
			assert.Equal(t, 2, cmd.Section)
			return nil
		})

		require.NoError(t, d.Dispatch(ctx, command.OpenSection(2)))
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("stops at the first error", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		boom := errors.New("boom")
		called := false
		d.SubscribeNamed(command.TypeAccept, "failing", func(ctx context.Context, cmd *command.Command) error {
			return boom
		})
		d.SubscribeNamed(command.TypeAccept, "after", func(ctx context.Context, cmd *command.Command) error {
			called = true
			return nil
		})

		err := d.Dispatch(ctx, command.Accept("47qAXb6fIm2zOKkLzMro"))
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.False(t, called)
		assert.Equal(t, 1, logger.ErrorCount())
	})

	t.Run("rejects invalid commands", func(t *testing.T) {
		d := NewDispatcher()
		d.Subscribe(command.TypeOpenSection, func(ctx context.Context, cmd *command.Command) error {
			t.Fatal("handler must not run")
			return nil
		})
		assert.Error(t, d.Dispatch(ctx, command.OpenSection(4)))
		assert.Error(t, d.Dispatch(ctx, nil))
	})

	t.Run("no handler", func(t *testing.T) {
		d := NewDispatcher()
		err := d.Dispatch(ctx, command.ViewProof())
		assert.ErrorIs(t, err, ErrNoHandler)
	})

	t.Run("recovers from panics", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		d.Subscribe(command.TypeViewProof, func(ctx context.Context, cmd *command.Command) error {
			panic("modal missing")
		})

		err := d.Dispatch(ctx, command.ViewProof())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "handler panic")
		assert.GreaterOrEqual(t, logger.ErrorCount(), 1)
	})

	t.Run("closed", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		require.NoError(t, d.Close())
		assert.True(t, logger.HasInfo("Dispatcher closed"))
		assert.ErrorIs(t, d.Dispatch(ctx, command.ViewProof()), ErrClosed)
		assert.Error(t, d.Close())
	})
}

func TestSubscribeNamedReplaces(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	for i := 0; i < 3; i++ {
		d.SubscribeNamed(command.TypeEditBill, "dashboard", func(ctx context.Context, cmd *command.Command) error {
			calls++
			return nil
		})
	}

	assert.Len(t, d.ListHandlers(command.TypeEditBill), 1)
	require.NoError(t, d.Dispatch(context.Background(), command.EditBill("b1")))
	assert.Equal(t, 1, calls)
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	d.SubscribeNamed(command.TypeRefuse, "a", func(ctx context.Context, cmd *command.Command) error { return nil })
	d.SubscribeNamed(command.TypeRefuse, "b", func(ctx context.Context, cmd *command.Command) error { return nil })

	d.Unsubscribe(command.TypeRefuse, "a")

	handlers := d.ListHandlers(command.TypeRefuse)
	require.Len(t, handlers, 1)
	assert.Equal(t, "b", handlers[0].Name)
	assert.Nil(t, handlers[0].Handler)
}
