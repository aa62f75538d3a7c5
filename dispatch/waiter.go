package dispatch

import (
	"context"
	"sync"

	amqperrors "github.com/maxpert/amqp-client-go/errors"
)

// WaitState is the lifecycle state of a Waiter
type WaitState int32

const (
	StateIdle WaitState = iota
	StateWaiting
	StateSatisfied
	StateCanceled
)

func (s WaitState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateSatisfied:
		return "satisfied"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Predicate decides whether a value satisfies a Waiter
type Predicate func(value interface{}) bool

// Waiter is a single-slot, predicate-gated, cancellable synchronization
// object. Producers offer values through Check from any goroutine; at most
// one party blocks in Wait at a time. A satisfied Check with no one waiting
// is recorded and satisfies the next Wait immediately, so predicates must be
// chosen so a stale match cannot be wrongly consumed. Exactly one logical
// reply is expected per wait cycle: multiple satisfying Checks are not
// queued, only the latest stored value survives. The instance is created
// once and reused across wait cycles via Reset.
//
// There is no unconditional-set operation: the only way to release a waiter
// with a value is through Check's predicate gate.
type Waiter struct {
	mu        sync.Mutex
	name      string
	predicate Predicate
	observer  Observer

	signal   chan struct{}
	signaled bool
	state    WaitState
	canceled bool
	waiting  bool
	value    interface{}
	hasValue bool
}

// WaiterOption configures a Waiter
type WaiterOption func(*Waiter)

// WithWaiterObserver sets the waiter observer
func WithWaiterObserver(observer Observer) WaiterOption {
	return func(w *Waiter) {
		w.observer = observer
	}
}

// NewWaiter creates a Waiter gated by the given predicate. A nil predicate
// accepts any non-nil value. The name identifies the waiter in cancellation
// errors.
func NewWaiter(name string, predicate Predicate, opts ...WaiterOption) *Waiter {
	if predicate == nil {
		predicate = func(value interface{}) bool {
			return value != nil
		}
	}
	w := &Waiter{
		name:      name,
		predicate: predicate,
		observer:  NoOpObserver{},
		signal:    make(chan struct{}),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Check evaluates the predicate against value. On a match the value is
// stored and the internal signal is set, releasing any current or future
// waiter; on a miss nothing changes. Safe to call whether or not anyone is
// waiting.
func (w *Waiter) Check(value interface{}) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.predicate(value) {
		return false
	}
	w.value = value
	w.hasValue = true
	if w.state != StateCanceled {
		w.state = StateSatisfied
	}
	w.set()
	return true
}

// set transitions the hidden signal to its set state. Callers must hold the
// mutex; the signal stays set until Reset.
func (w *Waiter) set() {
	if !w.signaled {
		w.signaled = true
		close(w.signal)
	}
}

// Wait blocks the calling goroutine until a Check succeeds or Cancel fires,
// then returns the stored value and clears the slot. A canceled wait returns
// a wait-canceled error naming the waiter. Context expiry is the
// externally-layered timeout path and returns ctx.Err().
func (w *Waiter) Wait(ctx context.Context) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	w.mu.Lock()
	w.waiting = true
	if w.state == StateIdle {
		w.state = StateWaiting
	}
	signal := w.signal
	w.mu.Unlock()

	select {
	case <-signal:
	case <-ctx.Done():
		w.mu.Lock()
		w.waiting = false
		if w.state == StateWaiting {
			w.state = StateIdle
		}
		w.mu.Unlock()
		return nil, ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.waiting = false

	if w.canceled {
		w.observer.WaiterCanceled()
		return nil, amqperrors.NewWaitCanceled(w.name)
	}

	if !w.hasValue {
		panic("dispatch: waiter signaled without a stored value")
	}
	value := w.value
	w.value = nil
	w.hasValue = false
	w.observer.WaiterSatisfied()
	return value, nil
}

// Cancel releases a currently suspended waiter, which then fails with a
// wait-canceled error. Returns whether a cancellation was actually delivered:
// false when no one is waiting or the waiter is already canceled, so
// redundant calls are safe.
func (w *Waiter) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.waiting || w.canceled {
		return false
	}
	w.canceled = true
	w.state = StateCanceled
	w.set()
	return true
}

// Reset clears the signal, the canceled and waiting flags and the stored
// value, returning the waiter to idle for the next wait cycle.
func (w *Waiter) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.signal = make(chan struct{})
	w.signaled = false
	w.canceled = false
	w.waiting = false
	w.value = nil
	w.hasValue = false
	w.state = StateIdle
}

// IsWaiting reports whether a party is currently suspended in Wait
func (w *Waiter) IsWaiting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.waiting
}

// State returns the current lifecycle state
func (w *Waiter) State() WaitState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Name returns the waiter's identifying name
func (w *Waiter) Name() string {
	return w.name
}
