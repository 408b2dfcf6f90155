package param

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jalopymusic/noteseq/pkg/midi"
)

var noteOffsets = map[string]int{
	"C": 0, "B#": 0,
	"C#": 1, "DB": 1,
	"D":  2,
	"D#": 3, "EB": 3,
	"E": 4, "FB": 4,
	"F": 5, "E#": 5,
	"F#": 6, "GB": 6,
	"G":  7,
	"G#": 8, "AB": 8,
	"A":  9,
	"A#": 10, "BB": 10,
	"B": 11, "CB": 11,
}

// NoteFormatter shows a MIDI note number as a name, middle C being C4.
func NoteFormatter(noteNumber float64) string {
	n := int(noteNumber + 0.5)
	if n < 0 || n > 127 {
		return strconv.Itoa(n)
	}
	return midi.NoteNumberToName(uint8(n))
}

// NoteParser parses note names ("C4", "f#3", "Bb-1") or plain numbers to
// MIDI note numbers.
func NoteParser(str string) (float64, error) {
	str = strings.ToUpper(strings.TrimSpace(str))

	if n, err := strconv.Atoi(str); err == nil {
		if n < 0 || n > 127 {
			return 0, fmt.Errorf("note number out of range: %d", n)
		}
		return float64(n), nil
	}

	octaveStart := -1
	for i, ch := range str {
		if ch >= '0' && ch <= '9' || ch == '-' {
			octaveStart = i
			break
		}
	}
	if octaveStart <= 0 {
		return 0, fmt.Errorf("no octave number found in note: %s", str)
	}

	offset, ok := noteOffsets[str[:octaveStart]]
	if !ok {
		return 0, fmt.Errorf("unknown note name: %s", str[:octaveStart])
	}

	octave, err := strconv.Atoi(str[octaveStart:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave number: %s", str[octaveStart:])
	}

	n := (octave+1)*12 + offset
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("note out of range: %s", str)
	}
	return float64(n), nil
}

// ChannelFormatter shows a zero-based MIDI channel as 1-16.
func ChannelFormatter(channel float64) string {
	return fmt.Sprintf("Ch %d", int(channel+0.5)+1)
}

// ChannelParser parses "Ch 3" or "3" (one-based) to a zero-based channel.
func ChannelParser(str string) (float64, error) {
	str = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(str)), "ch"))
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid channel: %s", str)
	}
	if n < 1 || n > 16 {
		return 0, fmt.Errorf("channel out of range: %d", n)
	}
	return float64(n - 1), nil
}

// OnOffFormatter formats boolean as On/Off
func OnOffFormatter(value float64) string {
	if value > 0.5 {
		return "On"
	}
	return "Off"
}

// OnOffParser parses On/Off strings
func OnOffParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	switch str {
	case "on", "yes", "true", "1":
		return 1, nil
	case "off", "no", "false", "0":
		return 0, nil
	default:
		return 0, fmt.Errorf("expected 'on' or 'off', got: %s", str)
	}
}
