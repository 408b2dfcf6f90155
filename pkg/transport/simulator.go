package transport

// Simulator is a deterministic stand-in for a host transport. Each call to
// Next returns the snapshot for the buffer about to be processed and then
// advances the clock by that buffer's length if the transport is rolling.
type Simulator struct {
	sampleRate float64
	tempo      float64

	playing bool
	preroll bool

	posBeats   float64
	posSamples int64

	// Beat position is derived from the samples elapsed since the last
	// tempo change or seek, so it does not drift over long runs.
	anchorBeats   float64
	anchorSamples int64

	hideTempo   bool
	hideBeats   bool
	hideSamples bool
}

// NewSimulator creates a stopped transport at position zero.
func NewSimulator(sampleRate, tempo float64) *Simulator {
	return &Simulator{
		sampleRate: sampleRate,
		tempo:      tempo,
	}
}

func (s *Simulator) Play() {
	s.playing = true
}

func (s *Simulator) Pause() {
	s.playing = false
}

// Stop pauses and returns to the project start.
func (s *Simulator) Stop() {
	s.playing = false
	s.preroll = false
	s.posBeats = 0
	s.posSamples = 0
	s.anchor()
}

func (s *Simulator) IsPlaying() bool {
	return s.playing
}

// SetPreroll marks the following buffers as host preroll. The position keeps
// advancing while preroll is active.
func (s *Simulator) SetPreroll(active bool) {
	s.preroll = active
}

func (s *Simulator) SetTempo(bpm float64) {
	if bpm > 0 {
		s.anchor()
		s.tempo = bpm
	}
}

func (s *Simulator) Tempo() float64 {
	return s.tempo
}

func (s *Simulator) SampleRate() float64 {
	return s.sampleRate
}

// Seek jumps to a beat position. The sample position follows at the current
// tempo.
func (s *Simulator) Seek(beats float64) {
	s.posBeats = beats
	s.posSamples = int64(beats*60.0/s.tempo*s.sampleRate + 0.5)
	s.anchor()
}

func (s *Simulator) anchor() {
	s.anchorBeats = s.posBeats
	s.anchorSamples = s.posSamples
}

// Position returns the current beat and sample position.
func (s *Simulator) Position() (float64, int64) {
	return s.posBeats, s.posSamples
}

// HideTempo makes the next snapshots omit the tempo, as a host without tempo
// information would.
func (s *Simulator) HideTempo(hide bool) {
	s.hideTempo = hide
}

// HideBeats makes the next snapshots omit the musical position.
func (s *Simulator) HideBeats(hide bool) {
	s.hideBeats = hide
}

// HideSamples makes the next snapshots omit the sample position.
func (s *Simulator) HideSamples(hide bool) {
	s.hideSamples = hide
}

// Context returns the current position as the VST3 process context a host
// would pass. It carries no preroll, and the sample position is always set.
func (s *Simulator) Context() VST3Context {
	ctx := VST3Context{
		SampleRate:         s.sampleRate,
		ProjectTimeSamples: s.posSamples,
	}
	if s.playing {
		ctx.State |= VST3Playing
	}
	if !s.hideTempo {
		ctx.State |= VST3TempoValid
		ctx.Tempo = s.tempo
	}
	if !s.hideBeats {
		ctx.State |= VST3ProjectTimeMusicValid
		ctx.ProjectTimeMusic = s.posBeats
	}
	return ctx
}

// Snapshot returns the transport state at the current position without
// advancing. It is read through FromVST3, with preroll and a hidden sample
// position layered on top.
func (s *Simulator) Snapshot() Snapshot {
	ctx := s.Context()
	snap := FromVST3(&ctx)
	snap.PrerollActive = s.playing && s.preroll
	if s.hideSamples {
		snap.PosSamples = 0
		snap.PosSamplesValid = false
	}
	return snap
}

// Next returns the snapshot for a buffer of numSamples samples and advances
// the clock past it when playing.
func (s *Simulator) Next(numSamples int) Snapshot {
	snap := s.Snapshot()
	if s.playing && numSamples > 0 {
		s.posSamples += int64(numSamples)
		s.posBeats = s.anchorBeats + float64(s.posSamples-s.anchorSamples)/s.sampleRate*s.tempo/60.0
	}
	return snap
}
