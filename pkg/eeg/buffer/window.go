package buffer

import (
	"sync"
)

// RollingWindow is a fixed capacity, drop-oldest sample window. A single
// producer pushes while any number of readers take snapshots; every snapshot
// sees a state either before or after a push, never in between.
type RollingWindow struct {
	mu       sync.RWMutex
	samples  []float64
	capacity int
	head     int // next write position
	size     int
}

// NewRollingWindow creates a window holding at most capacity samples
func NewRollingWindow(capacity int) *RollingWindow {
	if capacity < 1 {
		capacity = 1
	}

	return &RollingWindow{
		samples:  make([]float64, capacity),
		capacity: capacity,
	}
}

// Push appends a sample, evicting the oldest one when the window is full
func (w *RollingWindow) Push(sample float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples[w.head] = sample
	w.head = (w.head + 1) % w.capacity
	if w.size < w.capacity {
		w.size++
	}
}

// Snapshot returns a copy of the window contents ordered oldest to newest
func (w *RollingWindow) Snapshot() []float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]float64, w.size)

	// oldest sample sits at (head - size) mod capacity
	start := (w.head - w.size + w.capacity) % w.capacity
	n := copy(out, w.samples[start:min(start+w.size, w.capacity)])
	copy(out[n:], w.samples[:w.size-n])

	return out
}

// Len returns the number of samples currently held
func (w *RollingWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.size
}

// Capacity returns the maximum number of samples held
func (w *RollingWindow) Capacity() int {
	return w.capacity
}

// IsFull reports whether the window holds Capacity samples
func (w *RollingWindow) IsFull() bool {
	return w.Len() == w.capacity
}
