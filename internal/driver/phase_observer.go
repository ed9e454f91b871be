package driver

import "time"

// Pipeline stage names, shared by timers, trace spans and progress events.
const (
	PhaseLoad  = "load"
	PhaseLex   = "lex"
	PhaseParse = "parse"
	PhaseLower = "lower"
	PhaseEmit  = "emit"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a compilation phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during a compilation.
type PhaseObserver func(PhaseEvent)
