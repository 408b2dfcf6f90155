package transport

// VST3 ProcessContext state bits (ivstprocesscontext.h).
const (
	VST3Playing               uint32 = 1 << 1
	VST3CycleActive           uint32 = 1 << 2
	VST3Recording             uint32 = 1 << 3
	VST3SystemTimeValid       uint32 = 1 << 8
	VST3ProjectTimeMusicValid uint32 = 1 << 9
	VST3TempoValid            uint32 = 1 << 10
	VST3BarPositionValid      uint32 = 1 << 11
	VST3CycleValid            uint32 = 1 << 12
	VST3TimeSigValid          uint32 = 1 << 13
	VST3ContinuousTimeValid   uint32 = 1 << 17
)

// VST3Context mirrors the fields of Steinberg::Vst::ProcessContext that the
// sequencer reads.
type VST3Context struct {
	State              uint32
	SampleRate         float64
	ProjectTimeSamples int64
	ProjectTimeMusic   float64 // quarter notes
	BarPositionMusic   float64
	Tempo              float64
}

// FromVST3 converts a VST3 process context. A nil context yields a stopped
// snapshot. VST3 has no preroll flag and always supplies the sample
// position.
func FromVST3(ctx *VST3Context) Snapshot {
	if ctx == nil {
		return Stopped()
	}

	s := Snapshot{
		Playing:         ctx.State&VST3Playing != 0,
		PosSamples:      ctx.ProjectTimeSamples,
		PosSamplesValid: true,
	}
	if ctx.State&VST3TempoValid != 0 && ctx.Tempo > 0 {
		s.Tempo = ctx.Tempo
		s.TempoValid = true
	}
	if ctx.State&VST3ProjectTimeMusicValid != 0 {
		s.PosBeats = ctx.ProjectTimeMusic
		s.PosBeatsValid = true
	}
	return s
}

// CLAP transport flags (clap/events.h).
const (
	CLAPHasTempo           uint32 = 1 << 0
	CLAPHasBeatsTimeline   uint32 = 1 << 1
	CLAPHasSecondsTimeline uint32 = 1 << 2
	CLAPHasTimeSignature   uint32 = 1 << 3
	CLAPIsPlaying          uint32 = 1 << 4
	CLAPIsRecording        uint32 = 1 << 5
	CLAPIsLoopActive       uint32 = 1 << 6
	CLAPIsWithinPreroll    uint32 = 1 << 7
)

// CLAPTimeFactor is the fixed-point scale of clap_beattime and clap_sectime.
const CLAPTimeFactor = 1 << 31

// CLAPTransport mirrors the fields of clap_event_transport that the
// sequencer reads. Positions are CLAP fixed-point values.
type CLAPTransport struct {
	Flags          uint32
	SongPosBeats   int64
	SongPosSeconds int64
	Tempo          float64
}

// FromCLAP converts a CLAP transport event. CLAP carries no sample position,
// so it is derived from the seconds timeline when sampleRate is known.
func FromCLAP(ev *CLAPTransport, sampleRate float64) Snapshot {
	if ev == nil {
		return Stopped()
	}

	s := Snapshot{
		Playing:       ev.Flags&CLAPIsPlaying != 0,
		PrerollActive: ev.Flags&CLAPIsWithinPreroll != 0,
	}
	if ev.Flags&CLAPHasTempo != 0 && ev.Tempo > 0 {
		s.Tempo = ev.Tempo
		s.TempoValid = true
	}
	if ev.Flags&CLAPHasBeatsTimeline != 0 {
		s.PosBeats = float64(ev.SongPosBeats) / CLAPTimeFactor
		s.PosBeatsValid = true
	}
	if ev.Flags&CLAPHasSecondsTimeline != 0 && sampleRate > 0 {
		seconds := float64(ev.SongPosSeconds) / CLAPTimeFactor
		s.PosSamples = int64(seconds*sampleRate + 0.5)
		s.PosSamplesValid = true
	}
	return s
}
