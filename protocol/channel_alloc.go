package protocol

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// ChannelAllocator hands out channel ids for a single connection. Channel 0
// is reserved for connection-level traffic and never allocated. In-use ids
// are tracked in a compressed bitmap.
type ChannelAllocator struct {
	mu    sync.Mutex
	inUse *roaring.Bitmap
	max   uint16
	hint  uint32
}

// NewChannelAllocator creates an allocator for channel ids 1..max
func NewChannelAllocator(max uint16) *ChannelAllocator {
	return &ChannelAllocator{
		inUse: roaring.New(),
		max:   max,
		hint:  1,
	}
}

// Allocate returns an unused channel id, or false when all ids are taken.
// Allocation scans forward from the last handed-out id so released ids are
// not immediately reused.
func (a *ChannelAllocator) Allocate() (uint16, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := uint32(a.max)
	for i := uint32(0); i < count; i++ {
		id := (a.hint+i-1)%count + 1
		if !a.inUse.Contains(id) {
			a.inUse.Add(id)
			a.hint = id%count + 1
			return uint16(id), true
		}
	}
	return 0, false
}

// Release returns a channel id to the pool, reporting whether it was in use
func (a *ChannelAllocator) Release(id uint16) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inUse.CheckedRemove(uint32(id))
}

// InUse returns the number of allocated channel ids
func (a *ChannelAllocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.inUse.GetCardinality())
}

// Reserved reports whether the given channel id is currently allocated
func (a *ChannelAllocator) Reserved(id uint16) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inUse.Contains(uint32(id))
}
