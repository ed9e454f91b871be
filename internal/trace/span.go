package trace

import (
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// Span is an open traced operation. A span that is filtered out by the
// tracer level is inert but still passes its parent's context through, so
// nested spans keep their file attribution.
type Span struct {
	tracer  Tracer // nil when inert
	sc      SpanContext
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin starts a span below parent. The span inherits parent's file.
func Begin(t Tracer, scope Scope, name string, parent SpanContext) *Span {
	return begin(t, scope, name, parent.File, parent)
}

// BeginFile starts a span for work on one source file. Every span opened
// below it is attributed to file.
func BeginFile(t Tracer, scope Scope, name, file string, parent SpanContext) *Span {
	return begin(t, scope, name, file, parent)
}

func begin(t Tracer, scope Scope, name, file string, parent SpanContext) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{sc: SpanContext{SpanID: parent.SpanID, Depth: parent.Depth, File: file}}
	}

	sc := SpanContext{SpanID: globalSpans.Add(1), File: file}
	if parent.SpanID != 0 {
		sc.Depth = parent.Depth + 1
	}
	now := time.Now()
	t.Emit(&Event{
		Time:     now,
		Seq:      globalSeq.Add(1),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   sc.SpanID,
		ParentID: parent.SpanID,
		Depth:    sc.Depth,
		File:     file,
		Name:     name,
	})
	return &Span{tracer: t, sc: sc, parent: parent.SpanID, scope: scope, name: name, started: now}
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      globalSeq.Add(1),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.sc.SpanID,
		ParentID: s.parent,
		Depth:    s.sc.Depth,
		File:     s.sc.File,
		Name:     s.name,
		Detail:   detail,
		Elapsed:  dur,
		Extra:    s.extra,
	})
	return dur
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, or 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil || s.tracer == nil {
		return 0
	}
	return s.sc.SpanID
}

// Context returns the context children of this span should use.
func (s *Span) Context() SpanContext {
	if s == nil {
		return SpanContext{}
	}
	return s.sc
}

// Point emits a single instant event below parent.
func Point(t Tracer, scope Scope, name, detail string, parent SpanContext) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	depth := 0
	if parent.SpanID != 0 {
		depth = parent.Depth + 1
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      globalSeq.Add(1),
		Kind:     KindPoint,
		Scope:    scope,
		SpanID:   globalSpans.Add(1),
		ParentID: parent.SpanID,
		Depth:    depth,
		File:     parent.File,
		Name:     name,
		Detail:   detail,
	})
}
