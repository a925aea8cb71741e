// Package ring provides a lock-free single-producer/single-consumer ring
// buffer of MIDI messages, for handing live input events from a realtime
// callback to a non-realtime goroutine without blocking either side.
package ring

import "sync/atomic"

// Event is one timestamped MIDI message captured off a live input port.
type Event struct {
	Frame uint64
	Msg   [4]byte
	Len   uint8
}

// Buffer is a fixed-capacity SPSC ring of Events. The zero value is not
// usable; construct with New. Exactly one goroutine may call Push and
// exactly one (possibly different) goroutine may call Pop, matching the
// realtime-producer/non-realtime-consumer split a live MIDI input port
// needs.
type Buffer struct {
	data     []Event
	readPos  uint64
	writePos uint64
}

// New returns a Buffer holding up to capacity events. capacity is rounded
// up to the next power of two so index wraparound is a mask instead of a
// modulo, keeping Push safe to call from a realtime callback.
func New(capacity int) *Buffer {
	n := 1
	for n < capacity {
		n <<= 1
	}
	return &Buffer{data: make([]Event, n)}
}

func (b *Buffer) mask() uint64 { return uint64(len(b.data)) - 1 }

// Push appends ev, discarding it and reporting false if the buffer is full.
func (b *Buffer) Push(ev Event) bool {
	w := atomic.LoadUint64(&b.writePos)
	r := atomic.LoadUint64(&b.readPos)
	if w-r >= uint64(len(b.data)) {
		return false
	}
	b.data[w&b.mask()] = ev
	atomic.StoreUint64(&b.writePos, w+1)
	return true
}

// Pop removes and returns the oldest event, reporting false if the buffer
// is empty.
func (b *Buffer) Pop() (Event, bool) {
	r := atomic.LoadUint64(&b.readPos)
	w := atomic.LoadUint64(&b.writePos)
	if r == w {
		return Event{}, false
	}
	ev := b.data[r&b.mask()]
	atomic.StoreUint64(&b.readPos, r+1)
	return ev, true
}

// Len returns the number of events currently buffered. It is a snapshot:
// under concurrent Push/Pop it may be stale by the time the caller reads it.
func (b *Buffer) Len() int {
	w := atomic.LoadUint64(&b.writePos)
	r := atomic.LoadUint64(&b.readPos)
	return int(w - r)
}
