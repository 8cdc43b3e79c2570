// Package stats keeps the online-user history shown on the dashboard.
package stats

import (
	"sync/atomic"
	"time"
)

// Sample is one reading of the online-user counter.
type Sample struct {
	Time   time.Time `json:"time"`
	Online int       `json:"online"`
}

// Ring is a fixed-capacity circular buffer of samples. Push must only be
// called from one goroutine; Snapshot is safe from any number of readers.
type Ring struct {
	buf  []Sample
	head int // next write position
	n    int
	snap atomic.Pointer[[]Sample]
}

// NewRing creates a Ring holding at most capacity samples.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 100
	}
	r := &Ring{buf: make([]Sample, capacity)}
	empty := []Sample{}
	r.snap.Store(&empty)
	return r
}

// Cap returns the capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Push appends s, evicting the oldest sample when full, and publishes a
// new snapshot.
func (r *Ring) Push(s Sample) {
	r.buf[r.head] = s
	r.head = (r.head + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}

	out := make([]Sample, r.n)
	start := (r.head - r.n + len(r.buf)) % len(r.buf)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	r.snap.Store(&out)
}

// Snapshot returns the samples oldest first. The slice must not be modified.
func (r *Ring) Snapshot() []Sample {
	return *r.snap.Load()
}
