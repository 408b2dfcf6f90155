package bus

import (
	"errors"
	"fmt"
)

// Builder declares buses in order. Errors are collected and reported by
// Build.
type Builder struct {
	buses []Info
	errs  []error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) AudioInput(name string, channels int32) *Builder {
	return b.add(Info{Name: name, MediaType: MediaTypeAudio, Direction: DirectionInput, Channels: channels})
}

func (b *Builder) AudioOutput(name string, channels int32) *Builder {
	return b.add(Info{Name: name, MediaType: MediaTypeAudio, Direction: DirectionOutput, Channels: channels})
}

func (b *Builder) EventInput(name string) *Builder {
	return b.add(Info{Name: name, MediaType: MediaTypeEvent, Direction: DirectionInput, Channels: MIDIChannels})
}

func (b *Builder) EventOutput(name string) *Builder {
	return b.add(Info{Name: name, MediaType: MediaTypeEvent, Direction: DirectionOutput, Channels: MIDIChannels})
}

// Inactive disables the most recently declared bus until the host enables
// it.
func (b *Builder) Inactive() *Builder {
	if len(b.buses) == 0 {
		b.errs = append(b.errs, errors.New("Inactive called before any bus"))
		return b
	}
	b.buses[len(b.buses)-1].Active = false
	return b
}

func (b *Builder) add(info Info) *Builder {
	info.Active = true
	for _, existing := range b.buses {
		if existing.Name == info.Name {
			b.errs = append(b.errs, fmt.Errorf("duplicate bus name %q", info.Name))
			return b
		}
	}
	if info.Name == "" {
		b.errs = append(b.errs, fmt.Errorf("%s %s bus has no name", info.MediaType, info.Direction))
		return b
	}
	if info.MediaType == MediaTypeAudio && (info.Channels <= 0 || info.Channels > maxAudioChannels) {
		b.errs = append(b.errs, fmt.Errorf("bus %q: %d channels outside 1-%d", info.Name, info.Channels, maxAudioChannels))
		return b
	}
	b.buses = append(b.buses, info)
	return b
}

// Build returns the layout. A plugin needs at least one output, audio or
// event.
func (b *Builder) Build() (*Configuration, error) {
	errs := b.errs
	c := &Configuration{buses: append([]Info(nil), b.buses...)}
	if c.Count(MediaTypeAudio, DirectionOutput)+c.Count(MediaTypeEvent, DirectionOutput) == 0 {
		errs = append(errs, errors.New("no output bus"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// MustBuild is Build for fixed layouts; it panics on error.
func (b *Builder) MustBuild() *Configuration {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
