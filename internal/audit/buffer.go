package audit

import "sync"

const defaultBufferCapacity = 4096

// RingBuffer is a fixed-capacity event queue. When full, Enqueue overwrites
// the oldest entry so intake never blocks; overwritten events are counted so
// loss is visible instead of silent.
type RingBuffer struct {
	mu       sync.Mutex
	events   []Event
	head     int
	tail     int
	count    int
	capacity int
	dropped  int64
}

// NewRingBuffer returns a buffer holding at most capacity events. Zero or
// negative capacities fall back to the default.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = defaultBufferCapacity
	}
	return &RingBuffer{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

// Enqueue adds an event, evicting the oldest entry when the buffer is full.
func (r *RingBuffer) Enqueue(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == r.capacity {
		r.head = (r.head + 1) % r.capacity
		r.count--
		r.dropped++
	}

	r.events[r.tail] = event
	r.tail = (r.tail + 1) % r.capacity
	r.count++
}

// DequeueBatch removes and returns up to max events in arrival order.
// Returns nil when the buffer is empty.
func (r *RingBuffer) DequeueBatch(max int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 || max <= 0 {
		return nil
	}

	n := max
	if n > r.count {
		n = r.count
	}

	batch := make([]Event, n)
	for i := 0; i < n; i++ {
		batch[i] = r.events[r.head]
		r.events[r.head] = Event{}
		r.head = (r.head + 1) % r.capacity
	}
	r.count -= n

	return batch
}

// Len returns the number of buffered events.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Dropped returns how many events were evicted to make room for newer ones.
func (r *RingBuffer) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
