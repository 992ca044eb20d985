package capture

import "sync/atomic"

// allocator hands out thread identities from a single shared monotonic
// counter. It keeps no per-thread state; each Probe caches its id at
// construction, so no lookup structure is ever shared between goroutines.
type allocator struct {
	counter atomic.Int64
}

// allocate returns a fresh identity. Ids start at 0 and never repeat for
// the life of the process.
func (a *allocator) allocate() int64 {
	return a.counter.Add(1) - 1
}
