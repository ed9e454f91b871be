package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerBeginEnd(t *testing.T) {
	tm := NewTimer()
	lex := tm.Begin("lex")
	parse := tm.Begin("parse")
	tm.End(parse, "3 calls")
	tm.End(lex, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("got %d phases", len(r.Phases))
	}
	if r.Phases[0].Name != "lex" || r.Phases[1].Note != "3 calls" {
		t.Errorf("phases = %+v", r.Phases)
	}
	if r.TotalMS < r.Phases[0].DurationMS {
		t.Errorf("total %.3f < lex %.3f", r.TotalMS, r.Phases[0].DurationMS)
	}
}

func TestTimerAddMerge(t *testing.T) {
	a := NewTimer()
	a.Add("lex", 2*time.Millisecond)
	a.Add("parse", time.Millisecond)
	b := NewTimer()
	b.Add("parse", 3*time.Millisecond)
	b.Add("emit", time.Millisecond)
	a.Merge(b)
	a.Merge(nil)

	r := a.Report()
	want := map[string]float64{"lex": 2, "parse": 4, "emit": 1}
	if len(r.Phases) != len(want) {
		t.Fatalf("phases = %+v", r.Phases)
	}
	for _, p := range r.Phases {
		if p.DurationMS != want[p.Name] {
			t.Errorf("%s = %.3f ms, want %.0f", p.Name, p.DurationMS, want[p.Name])
		}
	}
	if r.TotalMS != 7 {
		t.Errorf("total = %.3f", r.TotalMS)
	}
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	tm.Add("emit", time.Millisecond)
	s := tm.Summary()
	if !strings.HasPrefix(s, "timings:\n") || !strings.Contains(s, "emit") || !strings.Contains(s, "total") {
		t.Errorf("summary:\n%s", s)
	}
	if NewTimer().Report().Phases != nil {
		t.Error("empty timer should report no phases")
	}
}
