package transport

import (
	"math"
	"testing"
)

func TestSnapshotBuilders(t *testing.T) {
	s := Rolling(120, 3.75).WithSamples(90000)

	if !s.Playing {
		t.Error("Rolling snapshot should be playing")
	}
	if tempo, ok := s.TempoBPM(); !ok || tempo != 120 {
		t.Errorf("Expected tempo 120, got %v (valid=%v)", tempo, ok)
	}
	if beats, ok := s.Beats(); !ok || beats != 3.75 {
		t.Errorf("Expected beats 3.75, got %v (valid=%v)", beats, ok)
	}
	if samples, ok := s.Samples(); !ok || samples != 90000 {
		t.Errorf("Expected samples 90000, got %v (valid=%v)", samples, ok)
	}

	missing := s.WithoutTempo().WithoutBeats()
	if _, ok := missing.TempoBPM(); ok {
		t.Error("Tempo should be unavailable")
	}
	if _, ok := missing.Beats(); ok {
		t.Error("Beats should be unavailable")
	}
	if _, ok := s.TempoBPM(); !ok {
		t.Error("With* helpers must not modify the original snapshot")
	}

	stopped := Stopped()
	if stopped.Playing || stopped.TempoValid || stopped.PosBeatsValid || stopped.PosSamplesValid {
		t.Errorf("Stopped snapshot should carry nothing, got %v", stopped)
	}
}

func TestSnapshotString(t *testing.T) {
	tests := []struct {
		snap Snapshot
		want string
	}{
		{Stopped(), "Transport{stopped, bpm:-, beats:-, samples:-}"},
		{Rolling(120, 1.5), "Transport{playing, bpm:120.00, beats:1.5000, samples:-}"},
		{Rolling(90, -1).WithPreroll(true).WithSamples(0), "Transport{preroll, bpm:90.00, beats:-1.0000, samples:0}"},
	}

	for _, tt := range tests {
		if got := tt.snap.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestFromVST3(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		if s := FromVST3(nil); s.Playing {
			t.Error("Nil context should be stopped")
		}
	})

	t.Run("PlayingWithTiming", func(t *testing.T) {
		s := FromVST3(&VST3Context{
			State:              VST3Playing | VST3TempoValid | VST3ProjectTimeMusicValid,
			ProjectTimeSamples: 48000,
			ProjectTimeMusic:   2.0,
			Tempo:              120,
		})
		if !s.Playing || s.PrerollActive {
			t.Errorf("Unexpected flags: %v", s)
		}
		if !s.TempoValid || s.Tempo != 120 {
			t.Errorf("Expected tempo 120, got %v", s)
		}
		if !s.PosBeatsValid || s.PosBeats != 2.0 {
			t.Errorf("Expected beats 2.0, got %v", s)
		}
		if !s.PosSamplesValid || s.PosSamples != 48000 {
			t.Errorf("Expected samples 48000, got %v", s)
		}
	})

	t.Run("MissingValidityBits", func(t *testing.T) {
		s := FromVST3(&VST3Context{State: VST3Playing, Tempo: 120, ProjectTimeMusic: 2})
		if s.TempoValid {
			t.Error("Tempo without kTempoValid should be unavailable")
		}
		if s.PosBeatsValid {
			t.Error("Position without kProjectTimeMusicValid should be unavailable")
		}
	})
}

func TestFromCLAP(t *testing.T) {
	ev := &CLAPTransport{
		Flags:          CLAPIsPlaying | CLAPIsWithinPreroll | CLAPHasTempo | CLAPHasBeatsTimeline | CLAPHasSecondsTimeline,
		SongPosBeats:   int64(3.5 * CLAPTimeFactor),
		SongPosSeconds: int64(1.75 * CLAPTimeFactor),
		Tempo:          120,
	}
	s := FromCLAP(ev, 48000)

	if !s.Playing || !s.PrerollActive {
		t.Errorf("Expected playing preroll, got %v", s)
	}
	if s.PosBeats != 3.5 {
		t.Errorf("Expected 3.5 beats, got %v", s.PosBeats)
	}
	if s.PosSamples != 84000 {
		t.Errorf("Expected 84000 samples, got %d", s.PosSamples)
	}

	noRate := FromCLAP(ev, 0)
	if noRate.PosSamplesValid {
		t.Error("Sample position needs a sample rate")
	}
}

func TestSimulatorAdvance(t *testing.T) {
	sim := NewSimulator(48000, 120)

	snap := sim.Next(512)
	if snap.Playing {
		t.Error("Simulator should start stopped")
	}
	if beats, _ := sim.Position(); beats != 0 {
		t.Errorf("Stopped transport must not advance, at %v", beats)
	}

	sim.Play()
	first := sim.Next(24000)
	second := sim.Next(24000)

	if first.PosBeats != 0 || first.PosSamples != 0 {
		t.Errorf("First buffer should start at zero, got %v", first)
	}
	if math.Abs(second.PosBeats-1.0) > 1e-12 || second.PosSamples != 24000 {
		t.Errorf("Half a second at 120 BPM is one beat, got %v", second)
	}
}

func TestSimulatorSeekAndTempo(t *testing.T) {
	sim := NewSimulator(48000, 120)
	sim.Play()
	sim.Seek(4)

	snap := sim.Next(480)
	if snap.PosBeats != 4 || snap.PosSamples != 96000 {
		t.Errorf("Expected beat 4 at sample 96000, got %v", snap)
	}

	sim.SetTempo(60)
	sim.SetTempo(-1)
	if sim.Tempo() != 60 {
		t.Errorf("Invalid tempo should be ignored, got %v", sim.Tempo())
	}
}

func TestSimulatorPrerollAndHiddenFields(t *testing.T) {
	sim := NewSimulator(44100, 100)
	sim.SetPreroll(true)

	if sim.Snapshot().PrerollActive {
		t.Error("Preroll only applies while playing")
	}

	sim.Play()
	if !sim.Next(64).PrerollActive {
		t.Error("Expected preroll")
	}
	if beats, _ := sim.Position(); beats == 0 {
		t.Error("Position should advance during preroll")
	}

	sim.HideTempo(true)
	sim.HideBeats(true)
	sim.HideSamples(true)
	snap := sim.Next(64)
	if snap.TempoValid || snap.PosBeatsValid || snap.PosSamplesValid {
		t.Errorf("Expected hidden fields, got %v", snap)
	}

	if ctx := sim.Context(); ctx.State&(VST3TempoValid|VST3ProjectTimeMusicValid) != 0 {
		t.Errorf("Hidden fields must clear the VST3 valid bits, got %#x", ctx.State)
	}

	sim.Stop()
	if beats, samples := sim.Position(); beats != 0 || samples != 0 || sim.IsPlaying() {
		t.Error("Stop should return to the start")
	}
}

func TestSimulatorSnapshotMatchesContext(t *testing.T) {
	sim := NewSimulator(48000, 90)
	sim.Play()
	sim.Seek(2.25)

	ctx := sim.Context()
	if ctx.State&VST3Playing == 0 || ctx.ProjectTimeMusic != 2.25 || ctx.Tempo != 90 || ctx.SampleRate != 48000 {
		t.Fatalf("Unexpected context %+v", ctx)
	}
	if got, want := sim.Snapshot(), FromVST3(&ctx); got != want {
		t.Errorf("Snapshot = %v, want %v", got, want)
	}

	sim.SetPreroll(true)
	if snap := sim.Snapshot(); !snap.PrerollActive || snap != FromVST3(&ctx).WithPreroll(true) {
		t.Errorf("Preroll should be the only difference, got %v", snap)
	}
}

func TestSimulatorDoesNotDrift(t *testing.T) {
	sim := NewSimulator(48000, 120)
	sim.Play()

	// 10000 buffers of 480 samples is exactly 200 beats.
	for i := 0; i < 10000; i++ {
		sim.Next(480)
	}
	beats, samples := sim.Position()
	if beats != 200 || samples != 4800000 {
		t.Errorf("Expected beat 200 at sample 4800000, got %v at %d", beats, samples)
	}
}

func TestSimulatorTempoChangeKeepsPosition(t *testing.T) {
	sim := NewSimulator(48000, 120)
	sim.Play()
	sim.Next(24000) // one beat at 120 BPM

	sim.SetTempo(60)
	snap := sim.Next(48000)
	if math.Abs(snap.PosBeats-1) > 1e-12 {
		t.Errorf("Tempo change must not move the position, got %v", snap.PosBeats)
	}
	if beats, _ := sim.Position(); math.Abs(beats-2) > 1e-12 {
		t.Errorf("One second at 60 BPM is one beat, at %v", beats)
	}
}
