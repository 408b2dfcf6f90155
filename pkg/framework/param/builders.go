package param

import (
	"fmt"
	"strings"
)

// Choice creates a list parameter whose plain values are the option
// indexes.
func Choice(id uint32, name string, options []string) *Builder {
	names := append([]string(nil), options...)

	formatter := func(value float64) string {
		index := int(value + 0.5)
		if index >= 0 && index < len(names) {
			return names[index]
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for i, n := range names {
			if strings.EqualFold(str, n) {
				return float64(i), nil
			}
		}
		return 0, fmt.Errorf("unknown option: %s", str)
	}

	maxIndex := len(names) - 1
	if maxIndex < 1 {
		maxIndex = 1
	}
	return New(id, name).
		Integer(0, maxIndex).
		List().
		Formatter(formatter, parser)
}

// NoteParameter creates a MIDI note number parameter shown as a note name.
func NoteParameter(id uint32, name string, defaultNote int) *Builder {
	return New(id, name).
		Integer(0, 127).
		Default(float64(defaultNote)).
		Formatter(NoteFormatter, NoteParser)
}

// VelocityParameter creates a MIDI velocity parameter (1-127).
func VelocityParameter(id uint32, name string, defaultVelocity int) *Builder {
	return New(id, name).
		Integer(1, 127).
		Default(float64(defaultVelocity))
}

// ChannelParameter creates a MIDI channel parameter. The plain value is the
// zero-based channel; it is displayed one-based.
func ChannelParameter(id uint32, name string, defaultChannel int) *Builder {
	return New(id, name).
		Integer(0, 15).
		Default(float64(defaultChannel)).
		Formatter(ChannelFormatter, ChannelParser)
}

// BypassParameter creates a standard bypass toggle.
func BypassParameter(id uint32, name string) *Builder {
	return New(id, name).
		Toggle().
		Bypass()
}
