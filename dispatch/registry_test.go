package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	amqperrors "github.com/maxpert/amqp-client-go/errors"
	"github.com/maxpert/amqp-client-go/protocol"
)

func TestHandlerNameConvention(t *testing.T) {
	assert.Equal(t, "on_connection_start", HandlerName(protocol.KeyConnectionStart))
	assert.Equal(t, "on_basic_deliver", HandlerName(protocol.KeyBasicDeliver))
	assert.Equal(t, "on_channel_close_ok", HandlerName(protocol.KeyChannelCloseOK))
}

func TestHandlerNameTableCoversCatalog(t *testing.T) {
	for key := range protocol.Methods {
		assert.NotEmpty(t, HandlerName(key), "no handler name for %s", key)
	}
}

func TestRegistryDispatchBoundHandler(t *testing.T) {
	invoked := false
	registry := NewRegistry(map[string]Handler{
		"on_basic_deliver": func(frame *protocol.MethodFrame) error {
			invoked = true
			return nil
		},
	})

	frame := &protocol.MethodFrame{ClassID: 60, MethodID: 60}
	handler, err := registry.Dispatch(frame, nil)
	require.NoError(t, err)
	require.NotNil(t, handler)

	require.NoError(t, handler(frame))
	assert.True(t, invoked)
}

func TestRegistryDispatchAbsentHandlerIsLegal(t *testing.T) {
	registry := NewRegistry(nil)

	// recognized method type with no handler installed: nil, no error
	frame := &protocol.MethodFrame{ClassID: 20, MethodID: 41} // channel.close-ok
	handler, err := registry.Dispatch(frame, nil)
	require.NoError(t, err)
	assert.Nil(t, handler)
	assert.False(t, registry.HasHandler(protocol.KeyChannelCloseOK))
}

func TestRegistryDispatchUnknownKey(t *testing.T) {
	registry := NewRegistry(nil)

	frame := &protocol.MethodFrame{ClassID: 99, MethodID: 1}
	_, err := registry.Dispatch(frame, nil)
	require.Error(t, err)
	assert.True(t, amqperrors.IsUnexpectedFrame(err))

	var dispErr *amqperrors.DispatchError
	require.ErrorAs(t, err, &dispErr)
	assert.Same(t, frame, dispErr.Event)
}

func TestRegistryDispatchCustomKeyFunc(t *testing.T) {
	registry := NewRegistry(map[string]Handler{
		"on_connection_close": func(frame *protocol.MethodFrame) error { return nil },
	})

	// route every frame to connection.close regardless of its own type
	keyFn := func(frame *protocol.MethodFrame) protocol.MethodKey {
		return protocol.KeyConnectionClose
	}
	frame := &protocol.MethodFrame{ClassID: 60, MethodID: 60}
	handler, err := registry.Dispatch(frame, keyFn)
	require.NoError(t, err)
	assert.NotNil(t, handler)
}

func TestRegistryWarnsOnMisnamedHandler(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	NewRegistry(map[string]Handler{
		"on_basic_delivery": func(frame *protocol.MethodFrame) error { return nil }, // typo
		"on_basic_deliver":  func(frame *protocol.MethodFrame) error { return nil },
	}, WithRegistryLogger(zap.New(core)))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "no protocol method type")
	assert.Equal(t, "on_basic_delivery", entries[0].ContextMap()["handler"])
}

type recordingObserver struct {
	NoOpObserver
	hits   int
	misses int
}

func (o *recordingObserver) DispatchHit(protocol.MethodKey)  { o.hits++ }
func (o *recordingObserver) DispatchMiss(protocol.MethodKey) { o.misses++ }

func TestRegistryObserver(t *testing.T) {
	obs := &recordingObserver{}
	registry := NewRegistry(nil, WithRegistryObserver(obs))

	_, err := registry.Dispatch(&protocol.MethodFrame{ClassID: 20, MethodID: 10}, nil)
	require.NoError(t, err)
	_, err = registry.Dispatch(&protocol.MethodFrame{ClassID: 99, MethodID: 9}, nil)
	require.Error(t, err)

	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
}
