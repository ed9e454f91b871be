package trace

import (
	"bufio"
	"io"
	"sync"
)

// RingTracer keeps the most recent events in a fixed-size circular buffer.
// Nothing is written until Dump is called.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	next   int // slot for the next event
	n      int // stored events, at most len(events)
	level  Level
}

// NewRingTracer creates a RingTracer holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

// Emit stores ev, overwriting the oldest event when full.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.events[t.next] = *ev
	t.next = (t.next + 1) % len(t.events)
	t.n = min(t.n+1, len(t.events))
}

// Len returns the number of stored events.
func (t *RingTracer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Event, 0, t.n)
	start := (t.next - t.n + len(t.events)) % len(t.events)
	for i := range t.n {
		out = append(out, t.events[(start+i)%len(t.events)])
	}
	return out
}

// Dump writes the stored events to w, oldest first.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	bw := bufio.NewWriter(w)
	format = ResolveFormat(format, "")
	var buf []byte
	for _, ev := range t.Snapshot() {
		buf = AppendEvent(buf[:0], &ev, format)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
