package dispatch

import (
	"github.com/maxpert/amqp-client-go/protocol"
)

// Observer receives dispatch, waiter and supervisor lifecycle events. The
// metrics package provides a Prometheus-backed implementation; NoOpObserver
// is the default.
type Observer interface {
	DispatchHit(key protocol.MethodKey)
	DispatchMiss(key protocol.MethodKey)
	WaiterSatisfied()
	WaiterCanceled()
	TaskStarted(name string)
	TaskFailed(name string)
}

// NoOpObserver discards all events
type NoOpObserver struct{}

func (NoOpObserver) DispatchHit(protocol.MethodKey)  {}
func (NoOpObserver) DispatchMiss(protocol.MethodKey) {}
func (NoOpObserver) WaiterSatisfied()                {}
func (NoOpObserver) WaiterCanceled()                 {}
func (NoOpObserver) TaskStarted(string)              {}
func (NoOpObserver) TaskFailed(string)               {}
