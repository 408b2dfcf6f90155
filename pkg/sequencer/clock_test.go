package sequencer

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestNextBoundaryOutsideBuffer(t *testing.T) {
	b, err := NextBoundary(3.75, 120, 48000, 512)
	if err != nil {
		t.Fatalf("NextBoundary: %v", err)
	}

	if !almostEqual(b.RemainBeats, 0.25, 1e-12) {
		t.Errorf("Expected remain_beats 0.25, got %v", b.RemainBeats)
	}
	if !almostEqual(b.RemainSeconds, 0.125, 1e-12) {
		t.Errorf("Expected remain_seconds 0.125, got %v", b.RemainSeconds)
	}
	if !almostEqual(b.BufferSeconds, 0.010666, 1e-5) {
		t.Errorf("Expected buffer_seconds ~0.01067, got %v", b.BufferSeconds)
	}
	if b.Inside {
		t.Error("Boundary 0.125s away must not be inside a 512-sample buffer")
	}
}

func TestNextBoundaryInsideBuffer(t *testing.T) {
	b, err := NextBoundary(3.9, 120, 48000, 4800)
	if err != nil {
		t.Fatalf("NextBoundary: %v", err)
	}

	if !almostEqual(b.RemainBeats, 0.1, 1e-9) {
		t.Errorf("Expected remain_beats 0.1, got %v", b.RemainBeats)
	}
	if !almostEqual(b.RemainSeconds, 0.05, 1e-9) {
		t.Errorf("Expected remain_seconds 0.05, got %v", b.RemainSeconds)
	}
	if !almostEqual(b.BufferSeconds, 0.1, 1e-12) {
		t.Errorf("Expected buffer_seconds 0.1, got %v", b.BufferSeconds)
	}
	if !b.Inside {
		t.Fatal("Boundary should be inside")
	}
	if b.RemainSamples != 2400 {
		t.Errorf("Expected remain_samples 2400, got %d", b.RemainSamples)
	}
}

func TestNextBoundaryRoundsHalfAwayFromZero(t *testing.T) {
	// 60 BPM at 1024 Hz is 1024 samples per beat; these positions are exact
	// in binary and leave 0.5 and 2.5 samples to the boundary.
	tests := []struct {
		name     string
		posBeats float64
		want     int64
	}{
		{"half sample", 3 - 1.0/2048, 1},
		{"two and a half samples", 3 - 5.0/2048, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NextBoundary(tt.posBeats, 60, 1024, 64)
			if err != nil {
				t.Fatalf("NextBoundary: %v", err)
			}
			if !b.Inside {
				t.Fatal("Boundary should be inside")
			}
			if b.RemainSamples != tt.want {
				t.Errorf("Expected offset %d, got %d", tt.want, b.RemainSamples)
			}
		})
	}
}

func TestNextBoundaryOnExactBeat(t *testing.T) {
	// A buffer that starts on a beat looks a whole beat ahead.
	b, err := NextBoundary(8, 120, 48000, 512)
	if err != nil {
		t.Fatal(err)
	}
	if b.RemainBeats != 1 || b.Inside {
		t.Errorf("Expected a full beat ahead and outside, got %+v", b)
	}
}

func TestNextBoundaryBufferEndIsInclusive(t *testing.T) {
	// 0.25 beats at 120 BPM and 1024 Hz is exactly 128 samples.
	b, err := NextBoundary(0.75, 120, 1024, 128)
	if err != nil {
		t.Fatal(err)
	}
	if !b.Inside {
		t.Fatal("A boundary exactly at the buffer end counts as inside")
	}
	if b.RemainSamples != 128 {
		t.Errorf("Expected unclamped offset 128, got %d", b.RemainSamples)
	}
}

func TestNextBoundaryNegativePosition(t *testing.T) {
	b, err := NextBoundary(-0.25, 120, 48000, 24000)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(b.RemainBeats, 0.25, 1e-12) {
		t.Errorf("Count-in position should be 0.25 beats from zero, got %v", b.RemainBeats)
	}
	if b.RemainSamples != 6000 {
		t.Errorf("Expected offset 6000, got %d", b.RemainSamples)
	}
}

func TestNextBoundaryErrors(t *testing.T) {
	tests := []struct {
		name       string
		pos        float64
		tempo      float64
		sampleRate float64
		numSamples int
		want       error
	}{
		{"zero tempo", 1, 0, 48000, 512, ErrNoTempo},
		{"negative tempo", 1, -120, 48000, 512, ErrNoTempo},
		{"nan tempo", 1, math.NaN(), 48000, 512, ErrNoTempo},
		{"no sample rate", 1, 120, 0, 512, ErrNoSampleRate},
		{"nan position", math.NaN(), 120, 48000, 512, ErrNoPosition},
		{"infinite position", math.Inf(1), 120, 48000, 512, ErrNoPosition},
		{"empty buffer", 1, 120, 48000, 0, ErrBadBuffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NextBoundary(tt.pos, tt.tempo, tt.sampleRate, tt.numSamples)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBeatFraction(t *testing.T) {
	tests := []struct {
		pos  float64
		want float64
	}{
		{0, 0},
		{3.75, 0.75},
		{4, 0},
		{-0.25, 0.75},
		{-2, 0},
	}

	for _, tt := range tests {
		if got := BeatFraction(tt.pos); !almostEqual(got, tt.want, 1e-12) {
			t.Errorf("BeatFraction(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestNearBoundaryThreshold(t *testing.T) {
	if got := nearBoundaryThreshold(120); got != 0.015625 {
		t.Errorf("Expected 0.015625 at 120 BPM, got %v", got)
	}
	if got := nearBoundaryThreshold(60); got != 0.03125 {
		t.Errorf("Expected 0.03125 at 60 BPM, got %v", got)
	}
}
