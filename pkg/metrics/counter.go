package metrics

import "sync/atomic"

// Counter is a monotonically increasing event count.
type Counter struct {
	name string
	n    atomic.Int64
}

func newCounter(name string) *Counter {
	return &Counter{name: name}
}

// Inc adds one to the counter.
func (c *Counter) Inc() {
	if !Enabled() {
		return
	}
	c.n.Add(1)
}

// Name returns the counter name.
func (c *Counter) Name() string { return c.name }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.n.Load() }

// Reset sets the counter back to zero.
func (c *Counter) Reset() { c.n.Store(0) }

// Reconstruction path counters.
var (
	RectangularPath = newCounter("grid_path_rectangular")
	IndexedPath     = newCounter("grid_path_indexed")
)

// AllCounters returns all registered counters.
func AllCounters() []*Counter {
	return []*Counter{RectangularPath, IndexedPath}
}
