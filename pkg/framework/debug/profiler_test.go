package debug

import (
	"strings"
	"testing"
	"time"
)

func TestProfilerRecord(t *testing.T) {
	p := NewProfiler(4)

	for _, d := range []time.Duration{3, 1, 4, 1, 5} {
		p.Record("process", d*time.Microsecond)
	}

	m, ok := p.Measurement("process")
	if !ok {
		t.Fatal("Expected measurement")
	}
	if m.Count != 5 {
		t.Errorf("Expected count 5, got %d", m.Count)
	}
	if m.MinTime != time.Microsecond || m.MaxTime != 5*time.Microsecond {
		t.Errorf("Unexpected min/max %v/%v", m.MinTime, m.MaxTime)
	}
	if m.LastTime != 5*time.Microsecond {
		t.Errorf("Expected last 5µs, got %v", m.LastTime)
	}
	if m.Average() != 2800*time.Nanosecond {
		t.Errorf("Expected average 2.8µs, got %v", m.Average())
	}

	// Ring of 4 keeps the last four samples: 5, 1, 4, 1.
	if got := m.Percentile(100); got != 5*time.Microsecond {
		t.Errorf("Expected p100 5µs, got %v", got)
	}
	if got := m.Percentile(0); got != time.Microsecond {
		t.Errorf("Expected p0 1µs, got %v", got)
	}
}

func TestProfilerStartAndReport(t *testing.T) {
	p := NewProfiler(16)

	if p.Report() != "No measurements recorded" {
		t.Error("Empty profiler should say so")
	}

	stop := p.Start("process")
	stop()

	report := p.Report()
	if !strings.HasPrefix(report, "process: count=1") {
		t.Errorf("Unexpected report %q", report)
	}

	p.Reset()
	if _, ok := p.Measurement("process"); ok {
		t.Error("Reset should clear measurements")
	}
}

func TestMeasurementLoad(t *testing.T) {
	m := Measurement{Count: 2, TotalTime: 2 * time.Millisecond}

	// 480 samples at 48 kHz is a 10ms budget; 1ms average is 10%.
	if got := m.Load(48000, 480); got < 9.999 || got > 10.001 {
		t.Errorf("Expected 10%% load, got %v", got)
	}
	if m.Load(0, 480) != 0 {
		t.Error("Unknown sample rate should give zero load")
	}
}
