// Package transport describes the host's musical clock as seen by one
// processing call.
package transport

import "fmt"

// Snapshot is the host transport state for a single buffer. It is read-only
// for the processor. Fields the host could not supply carry a false validity
// flag; their values are meaningless in that case.
type Snapshot struct {
	Playing       bool
	PrerollActive bool

	Tempo      float64 // beats per minute
	TempoValid bool

	PosBeats      float64 // musical position of the first sample, in quarter notes
	PosBeatsValid bool

	PosSamples      int64 // project position of the first sample
	PosSamplesValid bool
}

// Stopped returns a snapshot of a stopped transport with no timing data.
func Stopped() Snapshot {
	return Snapshot{}
}

// Rolling returns a snapshot of a playing transport at the given tempo and
// beat position. The sample position is left unset.
func Rolling(tempo, posBeats float64) Snapshot {
	return Snapshot{
		Playing:       true,
		Tempo:         tempo,
		TempoValid:    true,
		PosBeats:      posBeats,
		PosBeatsValid: true,
	}
}

// WithSamples returns a copy carrying a sample position.
func (s Snapshot) WithSamples(pos int64) Snapshot {
	s.PosSamples = pos
	s.PosSamplesValid = true
	return s
}

// WithPreroll returns a copy with the preroll flag set.
func (s Snapshot) WithPreroll(active bool) Snapshot {
	s.PrerollActive = active
	return s
}

// WithoutTempo returns a copy whose tempo is marked unavailable.
func (s Snapshot) WithoutTempo() Snapshot {
	s.Tempo = 0
	s.TempoValid = false
	return s
}

// WithoutBeats returns a copy whose beat position is marked unavailable.
func (s Snapshot) WithoutBeats() Snapshot {
	s.PosBeats = 0
	s.PosBeatsValid = false
	return s
}

// TempoBPM returns the tempo and whether the host supplied it.
func (s Snapshot) TempoBPM() (float64, bool) {
	return s.Tempo, s.TempoValid
}

// Beats returns the beat position and whether the host supplied it.
func (s Snapshot) Beats() (float64, bool) {
	return s.PosBeats, s.PosBeatsValid
}

// Samples returns the sample position and whether the host supplied it.
func (s Snapshot) Samples() (int64, bool) {
	return s.PosSamples, s.PosSamplesValid
}

func (s Snapshot) String() string {
	state := "stopped"
	switch {
	case s.Playing && s.PrerollActive:
		state = "preroll"
	case s.Playing:
		state = "playing"
	}

	tempo, beats, samples := "-", "-", "-"
	if s.TempoValid {
		tempo = fmt.Sprintf("%.2f", s.Tempo)
	}
	if s.PosBeatsValid {
		beats = fmt.Sprintf("%.4f", s.PosBeats)
	}
	if s.PosSamplesValid {
		samples = fmt.Sprintf("%d", s.PosSamples)
	}
	return fmt.Sprintf("Transport{%s, bpm:%s, beats:%s, samples:%s}", state, tempo, beats, samples)
}
