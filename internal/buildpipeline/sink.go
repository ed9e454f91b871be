package buildpipeline

import (
	"time"

	"lispc/internal/driver"
)

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a plain function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func emit(sink ProgressSink, file string, stage Stage, status Status, err error, dur time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: dur})
}

func emitQueued(sink ProgressSink, files []string) {
	for _, f := range files {
		emit(sink, f, StageLoad, StatusQueued, nil, 0)
	}
}

// stageForPhase maps driver phase names onto progress stages.
func stageForPhase(name string) (Stage, bool) {
	switch name {
	case driver.PhaseLoad:
		return StageLoad, true
	case driver.PhaseLex:
		return StageLex, true
	case driver.PhaseParse:
		return StageParse, true
	case driver.PhaseLower:
		return StageLower, true
	case driver.PhaseEmit:
		return StageEmit, true
	default:
		return "", false
	}
}
