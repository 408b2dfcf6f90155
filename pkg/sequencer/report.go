package sequencer

import (
	"fmt"

	"github.com/jalopymusic/noteseq/pkg/framework/debug"
)

// DiagnosticKind classifies an advisory condition seen during processing.
// None of them affect control flow.
type DiagnosticKind int

const (
	DiagStepEmitted DiagnosticKind = iota
	DiagFlush
	DiagMissingTempo
	DiagMissingPosition
	DiagMissingSamplePosition
	DiagMissingSampleRate
	DiagBadBuffer
	DiagMissedBoundary
	DiagNearBoundaryStart
	DiagOffsetOutOfRange
	DiagEventsDropped
	numDiagnosticKinds
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagStepEmitted:
		return "step"
	case DiagFlush:
		return "flush"
	case DiagMissingTempo:
		return "missing-tempo"
	case DiagMissingPosition:
		return "missing-position"
	case DiagMissingSamplePosition:
		return "missing-sample-position"
	case DiagMissingSampleRate:
		return "missing-sample-rate"
	case DiagBadBuffer:
		return "bad-buffer"
	case DiagMissedBoundary:
		return "missed-boundary"
	case DiagNearBoundaryStart:
		return "near-boundary-start"
	case DiagOffsetOutOfRange:
		return "offset-out-of-range"
	case DiagEventsDropped:
		return "events-dropped"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Level is the log level a diagnostic is written at.
func (k DiagnosticKind) Level() debug.LogLevel {
	switch k {
	case DiagStepEmitted, DiagNearBoundaryStart:
		return debug.LogLevelDebug
	case DiagFlush:
		return debug.LogLevelInfo
	default:
		return debug.LogLevelWarn
	}
}

// Diagnostic is a structured record of something the scheduler noticed.
// Fields that do not apply to a kind are zero.
type Diagnostic struct {
	Kind         DiagnosticKind
	PosBeats     float64
	LastPosBeats float64
	Tempo        float64
	SampleRate   float64
	NumSamples   int
	Offset       int64
	Beat         int64
	Events       int
	Trigger      Trigger
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagStepEmitted:
		return fmt.Sprintf("step: beat=%d offset=%d trigger=%s events=%d", d.Beat, d.Offset, d.Trigger, d.Events)
	case DiagFlush:
		return fmt.Sprintf("note off: transport stopped, flushed %d notes", d.Events)
	case DiagMissingTempo:
		return "missing tempo"
	case DiagMissingPosition:
		return "missing pos_beats"
	case DiagMissingSamplePosition:
		return "missing pos_samples"
	case DiagMissingSampleRate:
		return "missing sample rate: process called before initialize"
	case DiagBadBuffer:
		return fmt.Sprintf("invalid buffer length %d", d.NumSamples)
	case DiagMissedBoundary:
		return fmt.Sprintf("missed boundary: beats %.4f -> %.4f, emitting beat %d at offset 0", d.LastPosBeats, d.PosBeats, d.Beat)
	case DiagNearBoundaryStart:
		return fmt.Sprintf("start near boundary: beats=%.4f tempo=%.2f, emitting beat %d at offset 0", d.PosBeats, d.Tempo, d.Beat)
	case DiagOffsetOutOfRange:
		return fmt.Sprintf("discarded offset %d outside buffer of %d samples (beats=%.6f tempo=%.2f rate=%.0f)",
			d.Offset, d.NumSamples, d.PosBeats, d.Tempo, d.SampleRate)
	case DiagEventsDropped:
		return fmt.Sprintf("event buffer full, dropped %d events", d.Events)
	default:
		return d.Kind.String()
	}
}

// Reporter receives diagnostics from the scheduler. Report is called on the
// processing thread and must return quickly.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) {
	f(d)
}

// NopReporter discards diagnostics.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// LogReporter writes diagnostics to a logger. Each kind is logged the first
// time it occurs and then once every Every occurrences, so a host that never
// supplies a tempo does not flood the log at buffer rate.
type LogReporter struct {
	logger *debug.Logger
	every  uint64
	counts [numDiagnosticKinds]uint64
}

// NewLogReporter creates a reporter. every <= 1 logs every occurrence.
func NewLogReporter(logger *debug.Logger, every int) *LogReporter {
	if every < 1 {
		every = 1
	}
	return &LogReporter{
		logger: logger,
		every:  uint64(every),
	}
}

func (r *LogReporter) Report(d Diagnostic) {
	if d.Kind < 0 || d.Kind >= numDiagnosticKinds {
		return
	}
	level := d.Kind.Level()
	if !r.logger.Enabled(level) {
		return
	}

	r.counts[d.Kind]++
	n := r.counts[d.Kind]
	if n != 1 && n%r.every != 0 {
		return
	}
	if n == 1 {
		r.logger.Log(level, "%s", d)
		return
	}
	r.logger.Log(level, "%s (seen %d times)", d, n)
}

// Count returns how many diagnostics of a kind have been reported while the
// logger was enabled for it.
func (r *LogReporter) Count(kind DiagnosticKind) uint64 {
	if kind < 0 || kind >= numDiagnosticKinds {
		return 0
	}
	return r.counts[kind]
}
