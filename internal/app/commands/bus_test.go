package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingCommand struct{ Value int }

func (pingCommand) Key() string { return "test.ping" }

type otherCommand struct{}

func (otherCommand) Key() string { return "test.other" }

func TestDispatchTypedHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, int](bus, pingCommand{}.Key(), HandlerFunc[pingCommand, int](func(ctx context.Context, cmd pingCommand) (int, error) {
		return cmd.Value * 2, nil
	}))

	got, err := Dispatch[pingCommand, int](context.Background(), bus, pingCommand{Value: 21})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = Dispatch[pingCommand, string](context.Background(), bus, pingCommand{Value: 1})
	assert.ErrorIs(t, err, ErrResultType)

	_, err = bus.Dispatch(context.Background(), otherCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	assert.Equal(t, []string{"test.ping"}, bus.Keys())
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[pingCommand, int](func(context.Context, pingCommand) (int, error) { return 0, nil })
	RegisterHandler[pingCommand, int](bus, "test.ping", h)
	assert.Panics(t, func() { RegisterHandler[pingCommand, int](bus, "test.ping", h) })
}

func TestScope(t *testing.T) {
	assert.Equal(t, "catalog", Scope("catalog.add_season"))
	assert.Equal(t, "inquiry", Scope("inquiry.update_status"))
	assert.Equal(t, "standalone", Scope("standalone"))
}

func TestDispatchErrorsNameTheCommand(t *testing.T) {
	_, err := Dispatch[pingCommand, int](context.Background(), nil, pingCommand{})
	assert.ErrorIs(t, err, ErrNilBus)
	assert.Contains(t, err.Error(), "test.ping")

	bus := NewInMemoryBus()
	RegisterHandler[pingCommand, int](bus, pingCommand{}.Key(), HandlerFunc[pingCommand, int](func(context.Context, pingCommand) (int, error) {
		return 7, nil
	}))
	_, err = Dispatch[pingCommand, string](context.Background(), bus, pingCommand{})
	assert.EqualError(t, err, "commands: result type mismatch: test.ping returned int, want string")
}
