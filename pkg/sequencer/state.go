package sequencer

import "fmt"

// NoPosition is the value LastPosBeats holds while no playing position has
// been observed. LastPosValid is authoritative; count-in positions can be
// negative too.
const NoPosition = -1.0

// Phase is the scheduler's conceptual state, derived from State's flags.
type Phase int

const (
	// PhaseStopped: the transport was not playing on the last buffer.
	PhaseStopped Phase = iota
	// PhaseSeeking: no boundary has been located for the step in progress.
	PhaseSeeking
	// PhaseTracking: this step's boundary was emitted; waiting for the next.
	PhaseTracking
)

func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "Stopped"
	case PhaseSeeking:
		return "Seeking"
	case PhaseTracking:
		return "Tracking"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is carried from one buffer to the next. The zero value is not
// ready; use NewState.
type State struct {
	SampleRate      float64
	SampleRateValid bool

	LastPlaying  bool
	LastPosBeats float64
	LastPosValid bool
	Searching    bool
}

// NewState returns the state of a freshly created instance. LastPlaying
// starts true so the first stopped buffer flushes any notes a previous
// session may have left hanging.
func NewState() State {
	return State{
		LastPlaying:  true,
		LastPosBeats: NoPosition,
		Searching:    true,
	}
}

// Reset clears the transport tracking while keeping the sample rate.
func (s *State) Reset() {
	rate, valid := s.SampleRate, s.SampleRateValid
	*s = NewState()
	s.SampleRate, s.SampleRateValid = rate, valid
}

// SetSampleRate records the rate supplied at initialization. Non-positive
// rates leave the rate unknown.
func (s *State) SetSampleRate(rate float64) {
	if rate > 0 {
		s.SampleRate = rate
		s.SampleRateValid = true
		return
	}
	s.SampleRate = 0
	s.SampleRateValid = false
}

// HasPosition reports whether a playing beat position has been observed
// since the last reset or stop.
func (s State) HasPosition() bool {
	return s.LastPosValid
}

func (s *State) observe(posBeats float64) {
	s.LastPosBeats = posBeats
	s.LastPosValid = true
}

func (s *State) forgetPosition() {
	s.LastPosBeats = NoPosition
	s.LastPosValid = false
}

func (s State) Phase() Phase {
	switch {
	case !s.LastPlaying:
		return PhaseStopped
	case s.Searching:
		return PhaseSeeking
	default:
		return PhaseTracking
	}
}

func (s State) String() string {
	return fmt.Sprintf("State{%s, lastPlaying:%v, lastBeats:%.4f, searching:%v, rate:%.0f}",
		s.Phase(), s.LastPlaying, s.LastPosBeats, s.Searching, s.SampleRate)
}
