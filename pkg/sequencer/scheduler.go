package sequencer

import (
	"math"

	"github.com/jalopymusic/noteseq/pkg/midi"
	"github.com/jalopymusic/noteseq/pkg/transport"
)

// Scheduler owns the state of one plugin instance and runs Advance once per
// buffer. It is not safe for concurrent use; the host calls it from one
// real-time thread and sequences Initialize/Reset before processing.
type Scheduler struct {
	state    State
	action   StepAction
	reporter Reporter
}

// NewScheduler creates a scheduler with no sample rate. A nil reporter
// discards diagnostics.
func NewScheduler(action StepAction, reporter Reporter) *Scheduler {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Scheduler{
		state:    NewState(),
		action:   action,
		reporter: reporter,
	}
}

// Initialize caches the sample rate and discards all transport tracking.
func (s *Scheduler) Initialize(sampleRate float64) {
	s.state = NewState()
	s.state.SetSampleRate(sampleRate)
}

// Reset discards transport tracking, keeping the sample rate.
func (s *Scheduler) Reset() {
	s.state.Reset()
}

func (s *Scheduler) State() State {
	return s.state
}

func (s *Scheduler) Action() StepAction {
	return s.action
}

// SetAction replaces the step policy. The detection state is unaffected.
func (s *Scheduler) SetAction(action StepAction) {
	s.action = action
}

// Process appends the events for one buffer of numSamples samples to out.
// It never blocks or allocates, and no input makes it fail.
func (s *Scheduler) Process(snap transport.Snapshot, numSamples int, out *midi.Buffer) {
	s.state = Advance(s.state, snap, numSamples, &s.action, out, s.reporter)
}

// Advance is the per-buffer state machine. It takes the state left by the
// previous buffer and returns the state for the next one, appending any
// events to out.
//
// Rules, in order:
//  1. Not playing: flush all notes once on the falling edge, then idle.
//  2. Preroll: leave the state untouched.
//  3. Resume: a stopped-to-playing edge re-arms the search.
//  4. Catch-up: still searching and the beat number advanced since the last
//     buffer, so a boundary was skipped; emit at offset 0.
//  5. Near-boundary start: first playing buffer and within 1/32 of a step
//     past a boundary; emit at offset 0.
//  6. Search: emit at the computed offset if the boundary is inside. A
//     boundary whose offset falls outside the buffer is dropped, not
//     carried into the next one.
//
// A snapshot missing the beat position, the sample position or the tempo
// (or a scheduler with no sample rate) skips emission for that buffer.
func Advance(st State, snap transport.Snapshot, numSamples int, action *StepAction, out *midi.Buffer, r Reporter) State {
	if !snap.Playing {
		if st.LastPlaying {
			n := FlushAllNotes(action.Channel, out)
			r.Report(Diagnostic{Kind: DiagFlush, Events: n})
			if n < midi.NumNotes {
				r.Report(Diagnostic{Kind: DiagEventsDropped, Events: midi.NumNotes - n})
			}
		}
		st.LastPlaying = false
		st.Searching = true
		st.forgetPosition()
		return st
	}

	if snap.PrerollActive {
		return st
	}

	starting := !st.LastPlaying || !st.LastPosValid
	if !st.LastPlaying {
		st.Searching = true
	}
	st.LastPlaying = true

	pos, ok := snap.Beats()
	if !ok {
		r.Report(Diagnostic{Kind: DiagMissingPosition, NumSamples: numSamples})
		return st
	}
	lastPos, hadPos := st.LastPosBeats, st.LastPosValid
	st.observe(pos)

	if _, ok := snap.Samples(); !ok {
		r.Report(Diagnostic{Kind: DiagMissingSamplePosition, PosBeats: pos, NumSamples: numSamples})
		return st
	}
	if !st.SampleRateValid {
		r.Report(Diagnostic{Kind: DiagMissingSampleRate, PosBeats: pos, NumSamples: numSamples})
		return st
	}
	if numSamples <= 0 {
		r.Report(Diagnostic{Kind: DiagBadBuffer, PosBeats: pos, NumSamples: numSamples})
		return st
	}

	beat := int64(math.Floor(pos))

	if st.Searching && hadPos && math.Floor(pos) > math.Floor(lastPos) {
		st.Searching = false
		r.Report(Diagnostic{
			Kind:         DiagMissedBoundary,
			PosBeats:     pos,
			LastPosBeats: lastPos,
			NumSamples:   numSamples,
			Beat:         beat,
		})
		emit(Step{Offset: 0, Beat: beat, Resumed: starting, Trigger: TriggerCatchUp}, action, out, r)
		return st
	}

	tempo, ok := snap.TempoBPM()
	if !ok || tempo <= 0 {
		r.Report(Diagnostic{Kind: DiagMissingTempo, PosBeats: pos, NumSamples: numSamples})
		return st
	}

	if starting && BeatFraction(pos) < nearBoundaryThreshold(tempo) {
		st.Searching = false
		r.Report(Diagnostic{Kind: DiagNearBoundaryStart, PosBeats: pos, Tempo: tempo, Beat: beat})
		emit(Step{Offset: 0, Beat: beat, Resumed: true, Trigger: TriggerNearBoundary}, action, out, r)
		return st
	}

	b, err := NextBoundary(pos, tempo, st.SampleRate, numSamples)
	if err != nil {
		// Inputs were validated above; treat anything else like a missing tempo.
		r.Report(Diagnostic{Kind: DiagMissingTempo, PosBeats: pos, Tempo: tempo, NumSamples: numSamples})
		return st
	}
	if !b.Inside {
		st.Searching = true
		return st
	}

	// The boundary is consumed by this buffer even when its offset is unusable.
	st.Searching = false
	if b.RemainSamples < 0 || b.RemainSamples >= int64(numSamples) {
		r.Report(Diagnostic{
			Kind:       DiagOffsetOutOfRange,
			PosBeats:   pos,
			Tempo:      tempo,
			SampleRate: st.SampleRate,
			NumSamples: numSamples,
			Offset:     b.RemainSamples,
		})
		return st
	}

	emit(Step{Offset: int32(b.RemainSamples), Beat: beat + 1, Resumed: starting, Trigger: TriggerClock}, action, out, r)
	return st
}

func emit(step Step, action *StepAction, out *midi.Buffer, r Reporter) {
	want := action.MaxEvents()
	n := action.Emit(step, out)
	r.Report(Diagnostic{
		Kind:    DiagStepEmitted,
		Offset:  int64(step.Offset),
		Beat:    step.Beat,
		Events:  n,
		Trigger: step.Trigger,
	})
	if n < want {
		r.Report(Diagnostic{Kind: DiagEventsDropped, Events: want - n})
	}
}
