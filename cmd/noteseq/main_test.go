package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jalopymusic/noteseq/pkg/config"
	"github.com/jalopymusic/noteseq/pkg/noteseq"
)

func TestRenderPrintsBeats(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := runRender([]string{"-beats", "4", "-buffer", "480", "-log", "off"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("render: %v (stderr %q)", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"90 3C 66",
		"80 3C 00",
		"NoteOn{ch:0, note:60, vel:102, offset:0}",
		"4 events in 200 buffers (96000 samples, play; run 200x480)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderScriptAndSMF(t *testing.T) {
	dir := t.TempDir()
	smfPath := filepath.Join(dir, "out.mid")

	var stdout, stderr bytes.Buffer
	err := runRender([]string{
		"-q",
		"-script", "play; run 100; pause; run 5",
		"-smf", smfPath,
		"-buffer", "480",
		"-log", "off",
	}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(stdout.String(), "130 events in 105 buffers") {
		t.Errorf("unexpected summary:\n%s", stdout.String())
	}
	if info, err := os.Stat(smfPath); err != nil || info.Size() == 0 {
		t.Errorf("SMF not written: %v", err)
	}
}

func TestRenderUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad flag", []string{"-nope"}},
		{"bad script", []string{"-script", "dance"}},
		{"bad beats", []string{"-beats", "0"}},
		{"bad mode", []string{"-mode", "arpeggio"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := runRender(tt.args, &stdout, &stderr)
			var ue usageError
			if !errors.As(err, &ue) {
				t.Errorf("error = %v, want usageError", err)
			}
		})
	}
}

func TestRenderWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noteseq.json")
	cfg := config.Default()
	cfg.StepAction.Mode = config.ModeFixedChord
	cfg.StepAction.Chord = []int{0, 7}
	cfg.Log.Level = "off"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := runRender([]string{"-config", path, "-beats", "2", "-buffer", "480"}, &stdout, &stderr); err != nil {
		t.Fatal(err)
	}
	// Two beats of a two-note chord.
	if !strings.Contains(stdout.String(), "4 events in 100 buffers") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "note:67") {
		t.Errorf("chord fifth missing:\n%s", stdout.String())
	}
}

func newTestSession(t *testing.T) *session {
	t.Helper()
	cfg := config.Default()
	cfg.Render.BufferSize = 480
	cfg.Log.Level = "off"
	s, err := newSession(cfg, &bytes.Buffer{}, false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWatchAdvancesWithWallClock(t *testing.T) {
	s := newTestSession(t)
	s.host.Transport().Play()
	m := newWatchModel(s)

	t0 := time.Unix(1000, 0)
	m.Update(tickMsg(t0))
	m.Update(tickMsg(t0.Add(100 * time.Millisecond)))

	// 100 ms at 48 kHz is 4800 samples, ten buffers of 480.
	if got := s.host.Buffers(); got != 10 {
		t.Errorf("buffers = %d, want 10", got)
	}
	if len(m.log) != 1 {
		t.Errorf("expected the downbeat in the log, got %v", m.log)
	}

	// A long stall is capped.
	m.Update(tickMsg(t0.Add(10 * time.Second)))
	if got := s.host.Buffers(); got != 10+25 {
		t.Errorf("buffers after stall = %d, want 35", got)
	}

	view := m.View()
	if !strings.Contains(view, "Note Sequencer") || !strings.Contains(view, "playing") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestWatchKeys(t *testing.T) {
	s := newTestSession(t)
	m := newWatchModel(s)
	sim := s.host.Transport()

	key := func(k string) tea.Msg {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}

	m.Update(key(" "))
	if !sim.IsPlaying() {
		t.Error("space should start the transport")
	}
	m.Update(key("+"))
	if sim.Tempo() != 125 {
		t.Errorf("tempo = %v, want 125", sim.Tempo())
	}
	m.Update(key("l"))
	if beats, _ := sim.Position(); beats != 1 {
		t.Errorf("position = %v, want 1", beats)
	}
	m.Update(key("s"))
	if sim.IsPlaying() {
		t.Error("s should stop the transport")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestPrintVersion(t *testing.T) {
	var out bytes.Buffer
	printVersion(&out)

	for _, want := range []string{
		"noteseq " + noteseq.Version,
		"com.jalopymusic.note-sequencer",
		"class   " + noteseq.Info.UID().String(),
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("version output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRenderStateFiles(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "noteseq.state")

	var stdout, stderr bytes.Buffer
	args := []string{"-beats", "1", "-log", "off", "-script", "set note D4; play; run 1", "-save-state", statePath}
	if err := runRender(args, &stdout, &stderr); err != nil {
		t.Fatalf("render: %v (stderr %q)", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "saved state to") {
		t.Errorf("missing save confirmation:\n%s", stdout.String())
	}

	stdout.Reset()
	args = []string{"-log", "off", "-script", "play; run 1", "-load-state", statePath}
	if err := runRender(args, &stdout, &stderr); err != nil {
		t.Fatalf("render with state: %v (stderr %q)", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "note:62") {
		t.Errorf("restored note D4 not used:\n%s", stdout.String())
	}

	args = []string{"-log", "off", "-load-state", filepath.Join(t.TempDir(), "missing")}
	if err := runRender(args, &stdout, &stderr); err == nil {
		t.Error("expected error for a missing state file")
	}
}
