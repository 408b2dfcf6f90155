// Package bus describes the audio and event ports a plugin exposes.
package bus

import "fmt"

// MediaType is what a bus carries.
type MediaType int32

const (
	MediaTypeAudio MediaType = iota
	MediaTypeEvent
)

func (m MediaType) String() string {
	if m == MediaTypeEvent {
		return "event"
	}
	return "audio"
}

// Direction is the side of the plugin a bus is on.
type Direction int32

const (
	DirectionInput Direction = iota
	DirectionOutput
)

func (d Direction) String() string {
	if d == DirectionOutput {
		return "out"
	}
	return "in"
}

// MIDIChannels is the channel count reported for event buses.
const MIDIChannels = 16

// maxAudioChannels bounds the channel count of an audio bus.
const maxAudioChannels = 32

// Info describes one bus. The first bus of each media type and direction is
// the main bus; later ones are auxiliary.
type Info struct {
	Name      string
	MediaType MediaType
	Direction Direction
	Channels  int32
	Active    bool // enabled when the plugin is created
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s %q (%d ch)", i.MediaType, i.Direction, i.Name, i.Channels)
}

// Configuration is an immutable bus layout.
type Configuration struct {
	buses []Info
}

// NewNoteGeneratorConfiguration creates the layout of a plugin that only
// produces MIDI: one event output and no audio ports.
func NewNoteGeneratorConfiguration() *Configuration {
	return NewBuilder().
		EventOutput("MIDI Out").
		MustBuild()
}

// Count returns the number of buses of a media type and direction.
func (c *Configuration) Count(mediaType MediaType, direction Direction) int {
	n := 0
	for _, b := range c.buses {
		if b.MediaType == mediaType && b.Direction == direction {
			n++
		}
	}
	return n
}

// Bus returns the index-th bus of a media type and direction.
func (c *Configuration) Bus(mediaType MediaType, direction Direction, index int) (Info, bool) {
	for _, b := range c.buses {
		if b.MediaType != mediaType || b.Direction != direction {
			continue
		}
		if index == 0 {
			return b, true
		}
		index--
	}
	return Info{}, false
}

// HasAudio reports whether any audio bus is declared.
func (c *Configuration) HasAudio() bool {
	return c.Count(MediaTypeAudio, DirectionInput)+c.Count(MediaTypeAudio, DirectionOutput) > 0
}

// All returns every bus in declaration order.
func (c *Configuration) All() []Info {
	return append([]Info(nil), c.buses...)
}
