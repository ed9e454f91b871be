package main

import (
	"fmt"
	"io"
	"time"

	"lispc/internal/buildpipeline"
)

var timedStages = []buildpipeline.Stage{
	buildpipeline.StageLoad,
	buildpipeline.StageLex,
	buildpipeline.StageParse,
	buildpipeline.StageLower,
	buildpipeline.StageEmit,
	buildpipeline.StageWrite,
}

// printStageTimings prints stage durations summed over all files.
func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	for _, stage := range timedStages {
		if timings.Has(stage) {
			fmt.Fprintf(out, "%-6s %8.2f ms\n", stage, toMillis(timings.Duration(stage)))
		}
	}
	fmt.Fprintf(out, "%-6s %8.2f ms\n", "total", toMillis(timings.Sum(timedStages...)))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
