// Package sequencer decides, once per audio buffer, whether a beat boundary
// falls inside the buffer and emits the note events for it at the exact
// sample offset.
package sequencer

import (
	"errors"
	"math"
)

var (
	// ErrNoTempo is returned when the host did not supply a usable tempo.
	ErrNoTempo = errors.New("sequencer: tempo unavailable")
	// ErrNoSampleRate is returned before the processor has been initialized.
	ErrNoSampleRate = errors.New("sequencer: sample rate unavailable")
	// ErrNoPosition is returned when the host did not supply a beat position.
	ErrNoPosition = errors.New("sequencer: beat position unavailable")
	// ErrBadBuffer is returned for an empty or negative buffer length.
	ErrBadBuffer = errors.New("sequencer: invalid buffer length")
)

// Boundary describes the next step boundary relative to the start of a
// buffer. RemainSamples is only meaningful when Inside is true; it is not
// clamped and may equal the buffer length after rounding.
type Boundary struct {
	RemainBeats   float64
	RemainSeconds float64
	BufferSeconds float64
	RemainSamples int64
	Inside        bool
}

// BeatFraction returns the position within the current beat in [0, 1).
// Negative positions (count-in before bar 1) wrap the same way as positive
// ones.
func BeatFraction(posBeats float64) float64 {
	return posBeats - math.Floor(posBeats)
}

// NextBoundary computes how far the next beat boundary is from the first
// sample of a buffer of numSamples samples.
//
// The boundary is inside the buffer when the time remaining in the current
// beat does not exceed the buffer's duration. The sample offset is
// math.Round(sampleRate * remainSeconds): halves round away from zero, so a
// boundary exactly between two samples lands on the later one.
func NextBoundary(posBeats, tempoBPM, sampleRate float64, numSamples int) (Boundary, error) {
	if tempoBPM <= 0 || math.IsNaN(tempoBPM) || math.IsInf(tempoBPM, 0) {
		return Boundary{}, ErrNoTempo
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return Boundary{}, ErrNoSampleRate
	}
	if math.IsNaN(posBeats) || math.IsInf(posBeats, 0) {
		return Boundary{}, ErrNoPosition
	}
	if numSamples <= 0 {
		return Boundary{}, ErrBadBuffer
	}

	b := Boundary{
		RemainBeats:   1.0 - BeatFraction(posBeats),
		BufferSeconds: float64(numSamples) / sampleRate,
	}
	b.RemainSeconds = b.RemainBeats * 60.0 / tempoBPM

	if b.RemainSeconds <= b.BufferSeconds {
		b.Inside = true
		b.RemainSamples = int64(math.Round(sampleRate * b.RemainSeconds))
	}
	return b, nil
}

// nearBoundaryThreshold is the largest beat fraction treated as "on the
// beat" when playback starts: one thirty-second of the step duration in
// seconds, compared directly against the fraction.
func nearBoundaryThreshold(tempoBPM float64) float64 {
	return (60.0 / tempoBPM) / 32.0
}
