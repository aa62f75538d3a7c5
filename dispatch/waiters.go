package dispatch

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// WaiterGroup tracks the active Waiter of each channel on a connection, so
// the frame reader can offer incoming method frames to the right waiter and
// connection teardown can release everything still suspended.
type WaiterGroup struct {
	waiters *xsync.MapOf[uint16, *Waiter]
}

// NewWaiterGroup creates an empty waiter group
func NewWaiterGroup() *WaiterGroup {
	return &WaiterGroup{
		waiters: xsync.NewMapOf[uint16, *Waiter](),
	}
}

// Register installs the waiter for a channel, replacing any previous one
func (g *WaiterGroup) Register(channel uint16, w *Waiter) {
	g.waiters.Store(channel, w)
}

// Get returns the waiter registered for a channel
func (g *WaiterGroup) Get(channel uint16) (*Waiter, bool) {
	return g.waiters.Load(channel)
}

// Remove drops the waiter registered for a channel
func (g *WaiterGroup) Remove(channel uint16) {
	g.waiters.Delete(channel)
}

// Check offers a value to the waiter registered for a channel, returning
// whether the waiter's predicate accepted it. No registered waiter means
// false.
func (g *WaiterGroup) Check(channel uint16, value interface{}) bool {
	w, ok := g.waiters.Load(channel)
	if !ok {
		return false
	}
	return w.Check(value)
}

// CancelAll cancels every registered waiter, returning how many
// cancellations were actually delivered. Used on connection teardown.
func (g *WaiterGroup) CancelAll() int {
	delivered := 0
	g.waiters.Range(func(channel uint16, w *Waiter) bool {
		if w.Cancel() {
			delivered++
		}
		return true
	})
	return delivered
}

// Len returns the number of registered waiters
func (g *WaiterGroup) Len() int {
	return g.waiters.Size()
}
