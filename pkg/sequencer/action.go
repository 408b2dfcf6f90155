package sequencer

import (
	"fmt"

	"github.com/jalopymusic/noteseq/pkg/midi"
)

// Trigger records which rule located a step boundary.
type Trigger int

const (
	// TriggerClock: the boundary was computed inside the current buffer.
	TriggerClock Trigger = iota
	// TriggerCatchUp: a boundary was crossed between buffers without being
	// located, and is emitted late at offset 0.
	TriggerCatchUp
	// TriggerNearBoundary: playback started within a hair of a boundary and
	// is treated as starting on it.
	TriggerNearBoundary
)

func (t Trigger) String() string {
	switch t {
	case TriggerClock:
		return "clock"
	case TriggerCatchUp:
		return "catch-up"
	case TriggerNearBoundary:
		return "near-boundary"
	default:
		return fmt.Sprintf("Trigger(%d)", int(t))
	}
}

// Step is a located boundary handed to a StepAction.
type Step struct {
	Offset  int32 // sample offset within the buffer
	Beat    int64 // index of the beat that starts at the boundary
	Resumed bool  // first step after a stop, reset or preroll
	Trigger Trigger
}

// ActionKind selects the musical content emitted on each step.
type ActionKind int

const (
	// ActionAlternatingGate turns one note on at even beats and off at odd
	// beats, producing a gated tone one beat long.
	ActionAlternatingGate ActionKind = iota
	// ActionFixedChord sends a note-on for every chord note on each beat.
	ActionFixedChord
)

func (k ActionKind) String() string {
	switch k {
	case ActionAlternatingGate:
		return "alternating-gate"
	case ActionFixedChord:
		return "fixed-chord"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// ParseActionKind accepts the names produced by ActionKind.String.
func ParseActionKind(name string) (ActionKind, error) {
	switch name {
	case "alternating-gate", "gate":
		return ActionAlternatingGate, nil
	case "fixed-chord", "chord":
		return ActionFixedChord, nil
	default:
		return 0, fmt.Errorf("unknown step action %q", name)
	}
}

// MaxChordNotes bounds the notes a FixedChord can hold.
const MaxChordNotes = 16

// StepAction is the policy that turns a located step into note events. It
// is a plain value with fixed storage so it can be swapped between buffers
// without allocating.
type StepAction struct {
	Kind     ActionKind
	Channel  uint8
	Velocity uint8

	notes    [MaxChordNotes]uint8
	numNotes int
}

// AlternatingGate returns a gate policy for a single note.
func AlternatingGate(note, velocity, channel uint8) StepAction {
	a := StepAction{
		Kind:     ActionAlternatingGate,
		Channel:  channel & 0x0F,
		Velocity: velocity & 0x7F,
		numNotes: 1,
	}
	a.notes[0] = note & 0x7F
	return a
}

// FixedChord returns a chord policy. Notes past MaxChordNotes are ignored.
func FixedChord(notes []uint8, velocity, channel uint8) StepAction {
	a := StepAction{
		Kind:     ActionFixedChord,
		Channel:  channel & 0x0F,
		Velocity: velocity & 0x7F,
	}
	for _, n := range notes {
		if a.numNotes == MaxChordNotes {
			break
		}
		a.notes[a.numNotes] = n & 0x7F
		a.numNotes++
	}
	return a
}

// Notes returns a copy of the policy's notes.
func (a StepAction) Notes() []uint8 {
	out := make([]uint8, a.numNotes)
	copy(out, a.notes[:a.numNotes])
	return out
}

// MaxEvents is the most events one Emit call can produce.
func (a *StepAction) MaxEvents() int {
	if a.Kind == ActionAlternatingGate {
		return 1
	}
	return a.numNotes
}

// Emit appends the events for step to out and returns how many were added.
// All events share the step's offset.
func (a *StepAction) Emit(step Step, out *midi.Buffer) int {
	switch a.Kind {
	case ActionAlternatingGate:
		if a.numNotes == 0 {
			return 0
		}
		var ev midi.TimedEvent
		if step.Beat&1 == 0 {
			ev = midi.NoteOn(step.Offset, a.Channel, a.notes[0], a.Velocity)
		} else {
			ev = midi.NoteOff(step.Offset, a.Channel, a.notes[0], 0)
		}
		if out.Add(ev) {
			return 1
		}
		return 0

	case ActionFixedChord:
		added := 0
		for i := 0; i < a.numNotes; i++ {
			if out.Add(midi.NoteOn(step.Offset, a.Channel, a.notes[i], a.Velocity)) {
				added++
			}
		}
		return added
	}
	return 0
}

func (a StepAction) String() string {
	return fmt.Sprintf("%s{ch:%d, vel:%d, notes:%v}", a.Kind, a.Channel, a.Velocity, a.notes[:a.numNotes])
}

// FlushAllNotes appends a note-off at offset 0 for every note value on the
// channel and returns how many were added.
func FlushAllNotes(channel uint8, out *midi.Buffer) int {
	added := 0
	for note := 0; note < midi.NumNotes; note++ {
		if out.Add(midi.NoteOff(0, channel, uint8(note), 0)) {
			added++
		}
	}
	return added
}
