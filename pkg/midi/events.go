// Package midi defines the timed note events produced by the sequencer and
// their MIDI 1.0 wire encoding.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type EventType uint8

const (
	EventTypeNoteOff EventType = iota
	EventTypeNoteOn
)

func (t EventType) String() string {
	switch t {
	case EventTypeNoteOff:
		return "NoteOff"
	case EventTypeNoteOn:
		return "NoteOn"
	default:
		return fmt.Sprintf("EventType(%d)", uint8(t))
	}
}

// NumNotes is the number of addressable MIDI note values (0..127).
const NumNotes = 128

// TimedEvent is a note event positioned at a sample offset inside one
// processing buffer. It is a plain value so buffers of events can be reused
// without allocating.
type TimedEvent struct {
	Kind         EventType
	EventChannel uint8
	Offset       int32
	NoteNumber   uint8
	Velocity     uint8
}

// NoteOn builds a note-on event. Channel, note and velocity are masked to
// their MIDI 1.0 ranges.
func NoteOn(offset int32, channel, note, velocity uint8) TimedEvent {
	return newEvent(EventTypeNoteOn, offset, channel, note, velocity)
}

// NoteOff builds a note-off event, masked like NoteOn.
func NoteOff(offset int32, channel, note, velocity uint8) TimedEvent {
	return newEvent(EventTypeNoteOff, offset, channel, note, velocity)
}

func newEvent(kind EventType, offset int32, channel, note, velocity uint8) TimedEvent {
	return TimedEvent{
		Kind:         kind,
		EventChannel: channel & 0x0F,
		Offset:       offset,
		NoteNumber:   note & 0x7F,
		Velocity:     velocity & 0x7F,
	}
}

func (e TimedEvent) Type() EventType {
	return e.Kind
}

func (e TimedEvent) Channel() uint8 {
	return e.EventChannel
}

func (e TimedEvent) SampleOffset() int32 {
	return e.Offset
}

func (e TimedEvent) String() string {
	return fmt.Sprintf("%s{ch:%d, note:%d, vel:%d, offset:%d}",
		e.Kind, e.EventChannel, e.NoteNumber, e.Velocity, e.Offset)
}

// Message encodes the event as a MIDI 1.0 channel voice message.
// Note-off keeps its release velocity (status 0x8n) rather than being
// folded into a zero-velocity note-on.
func (e TimedEvent) Message() gomidi.Message {
	switch e.Kind {
	case EventTypeNoteOn:
		return gomidi.NoteOn(e.EventChannel, e.NoteNumber, e.Velocity)
	default:
		return gomidi.NoteOffVelocity(e.EventChannel, e.NoteNumber, e.Velocity)
	}
}

func NoteNumberToName(note uint8) string {
	noteNames := [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}
