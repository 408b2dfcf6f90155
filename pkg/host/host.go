// Package host drives a Processor offline the way a plugin host would:
// initialize, activate, then one process call per buffer against a simulated
// transport.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jalopymusic/noteseq/pkg/framework/bus"
	"github.com/jalopymusic/noteseq/pkg/framework/debug"
	"github.com/jalopymusic/noteseq/pkg/framework/process"
	"github.com/jalopymusic/noteseq/pkg/midi"
	"github.com/jalopymusic/noteseq/pkg/plugin"
	"github.com/jalopymusic/noteseq/pkg/transport"
)

var (
	// ErrNotStarted is returned when buffers are processed before Start.
	ErrNotStarted = errors.New("host not started")
	// ErrStateless is returned when saving or loading state of a processor
	// that keeps none.
	ErrStateless = errors.New("processor has no state")
)

// ProfileName is the profiler measurement for process calls.
const ProfileName = "process"

// Config describes the simulated host.
type Config struct {
	SampleRate   float64
	Tempo        float64
	BlockSize    int // default buffer size and the maxBlockSize given to Initialize
	MaxEvents    int // output event capacity per buffer
	Logger       *debug.Logger
	ProfileDepth int // samples kept per measurement; 0 disables profiling
}

// Event is an emitted event placed on the host's timelines.
type Event struct {
	midi.TimedEvent
	Buffer   int   // index of the process call
	Sample   int64 // samples processed by the host before the event, always increasing
	Timeline int64 // transport sample position of the event, -1 if unknown
	PosBeats float64
}

func (e Event) String() string {
	return fmt.Sprintf("%8d %10.4f %s", e.Sample, e.PosBeats, e.TimedEvent)
}

// Host runs one processor.
type Host struct {
	cfg      Config
	proc     plugin.Processor
	sim      *transport.Simulator
	ctx      *process.Context
	logger   *debug.Logger
	profiler *debug.Profiler

	started bool
	buffers int
	elapsed int64
	events  []Event
}

// New creates a host for p. The transport starts stopped at position zero.
func New(p plugin.Processor, cfg Config) (*Host, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %v", cfg.SampleRate)
	}
	if cfg.Tempo <= 0 {
		return nil, fmt.Errorf("tempo must be positive, got %v", cfg.Tempo)
	}
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", cfg.BlockSize)
	}
	if buses := p.GetBuses(); buses == nil || buses.Count(bus.MediaTypeEvent, bus.DirectionOutput) == 0 {
		return nil, errors.New("processor declares no event output bus")
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 2*midi.NumNotes + 16
	}
	logger := debug.Discard()
	if cfg.Logger != nil {
		logger = cfg.Logger.Named("host")
	}

	h := &Host{
		cfg:    cfg,
		proc:   p,
		sim:    transport.NewSimulator(cfg.SampleRate, cfg.Tempo),
		ctx:    process.NewContext(cfg.MaxEvents, p.GetParameters()),
		logger: logger,
	}
	h.ctx.SampleRate = cfg.SampleRate
	if cfg.ProfileDepth > 0 {
		h.profiler = debug.NewProfiler(cfg.ProfileDepth)
	}
	return h, nil
}

// Start initializes and activates the processor.
func (h *Host) Start() error {
	if h.started {
		return nil
	}
	if err := h.proc.Initialize(h.cfg.SampleRate, int32(h.cfg.BlockSize)); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := h.proc.SetActive(true); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	h.started = true
	h.logger.Debug("started: rate=%.0f block=%d tempo=%.2f", h.cfg.SampleRate, h.cfg.BlockSize, h.cfg.Tempo)
	return nil
}

// Close deactivates the processor.
func (h *Host) Close() error {
	if !h.started {
		return nil
	}
	h.started = false
	h.logger.Debug("stopped after %d buffers", h.buffers)
	return h.proc.SetActive(false)
}

// Transport gives direct control of the simulated transport.
func (h *Host) Transport() *transport.Simulator {
	return h.sim
}

// Events returns every event collected so far.
func (h *Host) Events() []Event {
	return h.events
}

// Buffers returns the number of process calls made.
func (h *Host) Buffers() int {
	return h.buffers
}

// Elapsed returns the number of samples processed.
func (h *Host) Elapsed() int64 {
	return h.elapsed
}

// Profiler returns the process-call profiler, or nil if disabled.
func (h *Host) Profiler() *debug.Profiler {
	return h.profiler
}

// Step processes one buffer of numSamples samples (the block size if 0) and
// returns the events it produced.
func (h *Host) Step(numSamples int) ([]Event, error) {
	if !h.started {
		return nil, ErrNotStarted
	}
	if numSamples == 0 {
		numSamples = h.cfg.BlockSize
	}
	if numSamples < 0 || numSamples > h.cfg.BlockSize {
		return nil, fmt.Errorf("buffer size %d outside 1-%d", numSamples, h.cfg.BlockSize)
	}

	snap := h.sim.Next(numSamples)
	h.ctx.Begin(snap, numSamples)

	var status plugin.Status
	if h.profiler != nil {
		done := h.profiler.Start(ProfileName)
		status = h.proc.Process(h.ctx)
		done()
	} else {
		status = h.proc.Process(h.ctx)
	}
	if status != plugin.StatusNormal {
		return nil, fmt.Errorf("buffer %d: process returned %s", h.buffers, status)
	}

	out := h.ctx.Output()
	out.Sort()
	if out.Dropped() > 0 {
		h.logger.Warn("buffer %d: output full, %d events dropped", h.buffers, out.Dropped())
	}

	start := len(h.events)
	for _, ev := range out.Events() {
		e := Event{
			TimedEvent: ev,
			Buffer:     h.buffers,
			Sample:     h.elapsed + int64(ev.Offset),
			Timeline:   -1,
		}
		if pos, ok := snap.Samples(); ok {
			e.Timeline = pos + int64(ev.Offset)
		}
		if beats, ok := snap.Beats(); ok {
			if tempo, ok := snap.TempoBPM(); ok {
				beats += float64(ev.Offset) / h.cfg.SampleRate * tempo / 60
			}
			e.PosBeats = beats
		}
		h.events = append(h.events, e)
	}

	h.buffers++
	h.elapsed += int64(numSamples)
	return h.events[start:], nil
}

// Apply executes one non-processing cue on the transport.
func (h *Host) Apply(c Cue) error {
	h.logger.Debug("cue: %s", c)
	switch c.Op {
	case OpPlay:
		h.sim.Play()
	case OpPause:
		h.sim.Pause()
	case OpStop:
		h.sim.Stop()
	case OpSeek:
		h.sim.Seek(c.Value)
	case OpTempo:
		h.sim.SetTempo(c.Value)
	case OpPreroll:
		h.sim.SetPreroll(c.Value != 0)
	case OpReset:
		h.proc.Reset()
	case OpSet:
		return h.SetParameter(c.Param, c.Text)
	case OpProcess:
		return fmt.Errorf("cue %s processes buffers, use Run", c)
	default:
		return fmt.Errorf("unknown cue %s", c)
	}
	return nil
}

// SetParameter changes a parameter the way host automation would, from its
// displayed form ("E4", "Ch 2", "Fixed Chord"). It takes effect from the
// next buffer.
func (h *Host) SetParameter(name, value string) error {
	p := h.ctx.Params().ByName(name)
	if p == nil {
		return fmt.Errorf("unknown parameter %q", name)
	}
	v, err := p.ParseValue(value)
	if err != nil {
		return err
	}
	h.ctx.SetParameterAtOffset(p.ID, v, 0)
	h.logger.Debug("%s = %s", p.Name, p.FormatValue(p.GetValue()))
	return nil
}

// SaveState writes the processor's state, if it has any.
func (h *Host) SaveState(w io.Writer) error {
	st, ok := h.proc.(plugin.Stateful)
	if !ok {
		return ErrStateless
	}
	return st.SaveState(w)
}

// LoadState restores state written by SaveState. Changed settings apply from
// the next buffer.
func (h *Host) LoadState(r io.Reader) error {
	st, ok := h.proc.(plugin.Stateful)
	if !ok {
		return ErrStateless
	}
	if err := st.LoadState(r); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	return nil
}

// Run starts the host if needed and executes script. It stops early when ctx
// is cancelled, returning ctx.Err().
func (h *Host) Run(ctx context.Context, script Script) ([]Event, error) {
	if err := h.Start(); err != nil {
		return nil, err
	}
	start := len(h.events)
	for _, c := range script {
		if c.Op != OpProcess {
			if err := h.Apply(c); err != nil {
				return h.events[start:], err
			}
			continue
		}
		for i := 0; i < c.Buffers; i++ {
			if err := ctx.Err(); err != nil {
				return h.events[start:], err
			}
			if _, err := h.Step(c.Size); err != nil {
				return h.events[start:], err
			}
		}
	}
	return h.events[start:], nil
}
