// Package dispatch routes decoded method frames to handlers and provides the
// synchronization primitives the connection and channel layers block on: a
// predicate-gated Waiter, a per-channel WaiterGroup, and a Supervisor for
// fire-and-forget work whose failures must still be observed.
package dispatch

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	amqperrors "github.com/maxpert/amqp-client-go/errors"
	"github.com/maxpert/amqp-client-go/protocol"
)

// HandlerPrefix is the naming convention for event handlers: the owning
// object declares "on_<class>_<method>" entries, e.g. "on_connection_start".
const HandlerPrefix = "on_"

// Handler handles one decoded method frame
type Handler func(frame *protocol.MethodFrame) error

// KeyFunc extracts the dispatch key from an event
type KeyFunc func(frame *protocol.MethodFrame) protocol.MethodKey

// DefaultKey extracts the event's protocol method type
func DefaultKey(frame *protocol.MethodFrame) protocol.MethodKey {
	return frame.Key()
}

var (
	handlerNamesOnce sync.Once
	handlerNames     map[protocol.MethodKey]string
)

// handlerNameTable maps every catalog method type to its conventional handler
// name. Computed once and shared process-wide.
func handlerNameTable() map[protocol.MethodKey]string {
	handlerNamesOnce.Do(func() {
		table := make(map[protocol.MethodKey]string, len(protocol.Methods))
		for key, info := range protocol.Methods {
			table[key] = HandlerPrefix + strings.ToLower(info.Class) + "_" + strings.ToLower(info.Method)
		}
		handlerNames = table
	})
	return handlerNames
}

// HandlerName returns the conventional handler name for a method key
func HandlerName(key protocol.MethodKey) string {
	return handlerNameTable()[key]
}

// Registry routes decoded method frames to the handlers an owning object
// declared at construction. The mapping covers every catalog method type; a
// nil handler is a legal entry meaning "recognized type, no handler
// installed". The mapping is immutable after construction.
type Registry struct {
	handlers map[protocol.MethodKey]Handler
	log      *zap.Logger
	observer Observer
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for construction-time warnings
func WithRegistryLogger(log *zap.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = log
	}
}

// WithRegistryObserver sets the dispatch observer
func WithRegistryObserver(observer Observer) RegistryOption {
	return func(r *Registry) {
		r.observer = observer
	}
}

// NewRegistry binds the owning object's declared handlers, keyed by their
// conventional names, against the protocol method type catalog. A declared
// name that matches the handler convention but corresponds to no catalog
// method type is surfaced as a warning; it can never be dispatched to.
func NewRegistry(declared map[string]Handler, opts ...RegistryOption) *Registry {
	r := &Registry{
		handlers: make(map[protocol.MethodKey]Handler, len(protocol.Methods)),
		log:      zap.NewNop(),
		observer: NoOpObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}

	names := handlerNameTable()
	known := make(map[string]struct{}, len(names))
	for key, name := range names {
		known[name] = struct{}{}
		r.handlers[key] = declared[name]
	}

	for name := range declared {
		if _, ok := known[name]; !ok {
			r.log.Warn("declared handler matches no protocol method type",
				zap.String("handler", name))
		}
	}
	return r
}

// Dispatch looks up the handler bound to keyFn(frame), using the method type
// key when keyFn is nil. A key with no registered method type fails with an
// unexpected-frame error carrying the event. A nil handler return is legal
// and means the type is recognized but ignored.
func (r *Registry) Dispatch(frame *protocol.MethodFrame, keyFn KeyFunc) (Handler, error) {
	if keyFn == nil {
		keyFn = DefaultKey
	}
	key := keyFn(frame)
	handler, ok := r.handlers[key]
	if !ok {
		r.observer.DispatchMiss(key)
		return nil, amqperrors.NewUnexpectedFrame(key.String(), frame)
	}
	r.observer.DispatchHit(key)
	return handler, nil
}

// HasHandler reports whether a non-nil handler is bound for the given key
func (r *Registry) HasHandler(key protocol.MethodKey) bool {
	return r.handlers[key] != nil
}
