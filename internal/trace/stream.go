package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes events to an io.Writer as they happen. Output is
// buffered and flushed whenever a root span ends.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	w      *bufio.Writer
	buf    []byte
	level  Level
	format Format
}

// NewStreamTracer creates a StreamTracer writing to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{
		out:    w,
		w:      bufio.NewWriter(w),
		level:  level,
		format: ResolveFormat(format, ""),
	}
}

// Emit writes ev unless its scope is filtered. LevelError never streams.
func (t *StreamTracer) Emit(ev *Event) {
	if t.level <= LevelError || !t.level.ShouldEmit(ev.Scope) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = AppendEvent(t.buf[:0], ev, t.format)
	// tracing never fails a compilation
	_, _ = t.w.Write(t.buf)
	if ev.Kind == KindSpanEnd && ev.ParentID == 0 {
		_ = t.w.Flush()
	}
}

// Flush writes buffered events and flushes the writer if it can be flushed.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.w.Flush(); err != nil {
		return err
	}
	if flusher, ok := t.out.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
