package capture

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jalopymusic/noteseq/pkg/host"
	"github.com/jalopymusic/noteseq/pkg/midi"
	"github.com/jalopymusic/noteseq/pkg/noteseq"
)

func render(t *testing.T, script string) []host.Event {
	t.Helper()
	h, err := host.New(noteseq.NewProcessor(nil, nil), host.Config{
		SampleRate: 48000,
		Tempo:      120,
		BlockSize:  480,
		MaxEvents:  noteseq.MaxEventsPerBuffer,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	s, err := host.ParseScript(script)
	if err != nil {
		t.Fatal(err)
	}
	events, err := h.Run(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	return events
}

type note struct {
	tick uint32
	on   bool
	key  uint8
}

func readNotes(t *testing.T, data []byte) (float64, []note) {
	t.Helper()
	rd, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(rd.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(rd.Tracks))
	}

	var bpm float64
	if changes := rd.TempoChanges(); len(changes) > 0 {
		bpm = changes[0].BPM
	}

	var notes []note
	var tick uint32
	for _, ev := range rd.Tracks[1] {
		tick += ev.Delta
		var ch, key, vel uint8
		msg := gomidi.Message(ev.Message)
		switch {
		case msg.GetNoteOn(&ch, &key, &vel):
			notes = append(notes, note{tick, true, key})
		case msg.GetNoteOff(&ch, &key, &vel):
			notes = append(notes, note{tick, false, key})
		}
	}
	return bpm, notes
}

func TestWriteBeats(t *testing.T) {
	events := render(t, "play; run 200")
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	var buf bytes.Buffer
	opts := Options{Tempo: 120, SampleRate: 48000, TrackName: "Note Sequencer"}
	if err := Write(&buf, events, opts); err != nil {
		t.Fatalf("Write: %v", err)
	}

	bpm, notes := readNotes(t, buf.Bytes())
	if math.Abs(bpm-120) > 0.01 {
		t.Errorf("tempo = %v, want 120", bpm)
	}
	want := []note{
		{0, true, 60},
		{960, false, 60},
		{1920, true, 60},
		{2880, false, 60},
	}
	if len(notes) != len(want) {
		t.Fatalf("notes = %v, want %v", notes, want)
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Errorf("note %d = %+v, want %+v", i, notes[i], want[i])
		}
	}
}

func TestWritePauseKeepsWallClock(t *testing.T) {
	// Half a beat paused between beat 0 and beat 1.
	events := render(t, "play; run 25; pause; run 25; play; run 75")

	var buf bytes.Buffer
	if err := Write(&buf, events, Options{Tempo: 120, SampleRate: 48000}); err != nil {
		t.Fatal(err)
	}
	_, notes := readNotes(t, buf.Bytes())

	// Beat 0, then 128 flush note-offs at the pause, then beat 1.
	if len(notes) != 1+midi.NumNotes+1 {
		t.Fatalf("got %d notes", len(notes))
	}
	if notes[1].tick != 480 {
		t.Errorf("flush at tick %d, want 480", notes[1].tick)
	}
	if last := notes[len(notes)-1]; last.tick != 1440 || last.on {
		t.Errorf("beat 1 = %+v, want note off at tick 1440", last)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")
	events := render(t, "play; run 100")

	if err := WriteFile(path, events, Options{Tempo: 120, SampleRate: 48000}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	rd, err := smf.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rd.Tracks) != 2 {
		t.Errorf("tracks = %d, want 2", len(rd.Tracks))
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	if _, err := Build(nil, Options{Tempo: 0, SampleRate: 48000}); err == nil {
		t.Error("expected tempo error")
	}
	if _, err := Build(nil, Options{Tempo: 120}); err == nil {
		t.Error("expected sample rate error")
	}

	unordered := []host.Event{
		{TimedEvent: midi.NoteOn(0, 0, 60, 100), Sample: 1000},
		{TimedEvent: midi.NoteOff(0, 0, 60, 0), Sample: 10},
	}
	if _, err := Build(unordered, Options{Tempo: 120, SampleRate: 48000}); err == nil {
		t.Error("expected ordering error")
	}
}

func TestTicks(t *testing.T) {
	opts := Options{Tempo: 90, SampleRate: 44100}
	// One beat at 90 BPM is 2/3 s = 29400 samples.
	if got := opts.Ticks(29400); got != Resolution {
		t.Errorf("Ticks(29400) = %d, want %d", got, Resolution)
	}
}
