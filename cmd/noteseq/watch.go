package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jalopymusic/noteseq/pkg/host"
	"github.com/jalopymusic/noteseq/pkg/midi"
	"github.com/jalopymusic/noteseq/pkg/noteseq"
)

const (
	frameRate  = 30
	gridBeats  = 16
	logLines   = 12
	tempoStep  = 5.0
	maxCatchUp = 250 * time.Millisecond
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cellStyle    = lipgloss.NewStyle().Width(3).Align(lipgloss.Center).Foreground(lipgloss.Color("241"))
	onCellStyle  = cellStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("205"))
	offCellStyle = cellStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("63"))
	nowCellStyle = cellStyle.Underline(true).Foreground(lipgloss.Color("255"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// watchModel plays the host in real time, a frame at a time.
type watchModel struct {
	sess *session

	last      time.Time
	debt      float64 // samples owed to the wall clock
	beatKinds map[int64]midi.EventType
	log       []string
	err       error
}

func newWatchModel(sess *session) *watchModel {
	return &watchModel{
		sess:      sess,
		beatKinds: make(map[int64]midi.EventType),
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tick()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	sim := m.sess.host.Transport()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if sim.IsPlaying() {
				sim.Pause()
			} else {
				sim.Play()
			}
		case "s":
			sim.Stop()
			m.beatKinds = make(map[int64]midi.EventType)
		case "+", "=":
			sim.SetTempo(sim.Tempo() + tempoStep)
		case "-", "_":
			sim.SetTempo(math.Max(tempoStep, sim.Tempo()-tempoStep))
		case "left", "h":
			beats, _ := sim.Position()
			sim.Seek(math.Max(0, math.Floor(beats)-1))
		case "right", "l":
			beats, _ := sim.Position()
			sim.Seek(math.Floor(beats) + 1)
		case "r":
			m.sess.proc.Reset()
			m.addLog(dimStyle.Render("processor reset"))
		}
		return m, nil

	case tickMsg:
		m.advance(time.Time(msg))
		if m.err != nil {
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

// advance processes as many buffers as the wall clock allows since the last
// frame.
func (m *watchModel) advance(now time.Time) {
	if m.last.IsZero() {
		m.last = now
		return
	}
	elapsed := now.Sub(m.last)
	m.last = now
	if elapsed > maxCatchUp {
		elapsed = maxCatchUp
	}

	block := m.sess.cfg.Render.BufferSize
	m.debt += elapsed.Seconds() * m.sess.cfg.Render.SampleRate
	for m.debt >= float64(block) {
		m.debt -= float64(block)
		events, err := m.sess.host.Step(block)
		if err != nil {
			m.err = err
			return
		}
		m.record(events)
	}
}

func (m *watchModel) record(events []host.Event) {
	// Only a stop produces a full sweep of note offs, and a stopped buffer
	// has no step.
	if len(events) >= midi.NumNotes {
		m.addLog(dimStyle.Render(fmt.Sprintf("transport stopped: %d note offs", len(events))))
		return
	}
	for _, ev := range events {
		beat := int64(math.Round(ev.PosBeats))
		m.beatKinds[beat] = ev.Kind
		m.addLog(fmt.Sprintf("%10d  beat %-5d %-4s % X  %s",
			ev.Sample, beat, midi.NoteNumberToName(ev.NoteNumber), ev.Message().Bytes(), ev.TimedEvent))
	}
}

func (m *watchModel) addLog(line string) {
	m.log = append(m.log, line)
	if len(m.log) > logLines {
		m.log = m.log[len(m.log)-logLines:]
	}
}

func (m *watchModel) View() string {
	sim := m.sess.host.Transport()
	beats, samples := sim.Position()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", noteseq.Info.Name, noteseq.Version)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(m.sess.proc.Action().String()))
	b.WriteString("\n\n")

	state := "stopped"
	if sim.IsPlaying() {
		state = "playing"
	}
	fmt.Fprintf(&b, "%-8s %6.1f BPM   beat %9.3f   sample %d\n\n", state, sim.Tempo(), beats, samples)

	b.WriteString(m.grid(beats))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render(strings.Join(m.padLog(), "\n")))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errStyle.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(dimStyle.Render("space play/pause  s stop  +/- tempo  ←/→ seek  r reset  q quit"))
	return b.String()
}

// grid renders the bar of gridBeats beats containing beats.
func (m *watchModel) grid(beats float64) string {
	start := int64(math.Floor(beats/gridBeats)) * gridBeats
	current := int64(math.Floor(beats))

	cells := make([]string, gridBeats)
	for i := range cells {
		beat := start + int64(i)
		label := fmt.Sprintf("%d", i+1)
		style := cellStyle
		if kind, ok := m.beatKinds[beat]; ok {
			style = offCellStyle
			if kind == midi.EventTypeNoteOn {
				style = onCellStyle
			}
		}
		if beat == current {
			style = style.Underline(true).Bold(true)
			if _, ok := m.beatKinds[beat]; !ok {
				style = nowCellStyle
			}
		}
		cells[i] = style.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *watchModel) padLog() []string {
	lines := make([]string, logLines)
	copy(lines[logLines-len(m.log):], m.log)
	return lines
}

func runWatch(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var sf sessionFlags
	sf.register(fs)
	paused := fs.Bool("paused", false, "start with the transport stopped")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageError{err}
	}

	cfg, err := sf.load()
	if err != nil {
		return err
	}
	// The terminal belongs to the view; only a log file gets diagnostics.
	if cfg.Log.File == "" {
		cfg.Log.Level = "off"
	}

	sess, err := newSession(cfg, stderr, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	if !*paused {
		sess.host.Transport().Play()
	}

	m := newWatchModel(sess)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return m.err
}
