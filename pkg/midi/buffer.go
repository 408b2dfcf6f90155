package midi

// Buffer collects the events produced during one processing call. Its
// storage is allocated once; Add never grows it, so it is safe to use on the
// audio thread. Events are kept in insertion order.
type Buffer struct {
	events  []TimedEvent
	dropped int
}

// NewBuffer creates a buffer holding at most capacity events.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		events: make([]TimedEvent, 0, capacity),
	}
}

// Add appends an event. It reports false, and counts the event as dropped,
// when the buffer is full.
func (b *Buffer) Add(event TimedEvent) bool {
	if len(b.events) == cap(b.events) {
		b.dropped++
		return false
	}
	b.events = append(b.events, event)
	return true
}

// Events returns the buffered events. The slice is only valid until the next
// Reset.
func (b *Buffer) Events() []TimedEvent {
	return b.events
}

func (b *Buffer) Len() int {
	return len(b.events)
}

func (b *Buffer) Cap() int {
	return cap(b.events)
}

// Dropped returns how many events were rejected since the last Reset.
func (b *Buffer) Dropped() int {
	return b.dropped
}

func (b *Buffer) IsEmpty() bool {
	return len(b.events) == 0
}

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() {
	b.events = b.events[:0]
	b.dropped = 0
}

// Sort orders events by sample offset, keeping insertion order for equal
// offsets. Insertion sort: buffers are small and usually already sorted.
func (b *Buffer) Sort() {
	ev := b.events
	for i := 1; i < len(ev); i++ {
		e := ev[i]
		j := i - 1
		for j >= 0 && ev[j].Offset > e.Offset {
			ev[j+1] = ev[j]
			j--
		}
		ev[j+1] = e
	}
}
