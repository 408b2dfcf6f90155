package noteseq

import (
	"fmt"
	"io"

	"github.com/jalopymusic/noteseq/pkg/config"
	"github.com/jalopymusic/noteseq/pkg/framework/param"
	"github.com/jalopymusic/noteseq/pkg/framework/plugin"
	"github.com/jalopymusic/noteseq/pkg/framework/process"
	"github.com/jalopymusic/noteseq/pkg/framework/state"
	"github.com/jalopymusic/noteseq/pkg/midi"
	pluginapi "github.com/jalopymusic/noteseq/pkg/plugin"
	"github.com/jalopymusic/noteseq/pkg/sequencer"
)

// Parameter IDs
const (
	ParamMode uint32 = iota
	ParamNote
	ParamVelocity
	ParamChannel
)

// Mode list entries, in ActionKind order.
var modeNames = []string{"Alternating Gate", "Fixed Chord"}

// MaxEventsPerBuffer is the output capacity a host must provide: a flush
// after a parameter change, a step, and a flush on stop.
const MaxEventsPerBuffer = 2*midi.NumNotes + sequencer.MaxChordNotes

type actionParams struct {
	kind     sequencer.ActionKind
	note     int
	velocity int
	channel  int
}

// Processor owns one Scheduler and keeps its step action in sync with the
// parameters.
type Processor struct {
	*plugin.BaseProcessor

	scheduler *sequencer.Scheduler

	chordOffsets [sequencer.MaxChordNotes]int
	numOffsets   int
	chordNotes   [sequencer.MaxChordNotes]uint8

	applied actionParams
	stale   bool

	state *state.Manager
}

var (
	_ pluginapi.Processor = (*Processor)(nil)
	_ pluginapi.Stateful  = (*Processor)(nil)
)

// NewProcessor creates a processor configured from cfg.
func NewProcessor(cfg *config.Config, reporter sequencer.Reporter) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}
	sa := cfg.StepAction

	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(nil),
	}
	for _, off := range sa.Chord {
		if p.numOffsets == len(p.chordOffsets) {
			break
		}
		p.chordOffsets[p.numOffsets] = off
		p.numOffsets++
	}

	kind, err := sequencer.ParseActionKind(sa.Mode)
	if err != nil {
		kind = sequencer.ActionAlternatingGate
	}

	params := p.Parameters()
	// IDs are distinct constants, Add cannot fail.
	_ = params.Add(
		param.Choice(ParamMode, "Mode", modeNames).Default(float64(kind)).Build(),
		param.NoteParameter(ParamNote, "Note", sa.Note).Build(),
		param.VelocityParameter(ParamVelocity, "Velocity", sa.Velocity).Build(),
		param.ChannelParameter(ParamChannel, "Channel", sa.Channel).Build(),
	)

	p.state = state.NewManager(params, p)
	p.applied = p.readParams(params)
	p.scheduler = sequencer.NewScheduler(p.buildAction(p.applied), reporter)

	p.OnInitialize(func(sampleRate float64, maxBlockSize int32) error {
		p.scheduler.Initialize(sampleRate)
		return nil
	})
	p.OnReset(p.scheduler.Reset)

	return p
}

// Process runs the scheduler for one buffer.
func (p *Processor) Process(ctx *process.Context) pluginapi.Status {
	if want := p.readParams(p.Parameters()); want != p.applied || p.stale {
		st := p.scheduler.State()
		if st.LastPlaying && st.HasPosition() {
			// The old note may still be sounding on the old channel.
			sequencer.FlushAllNotes(uint8(p.applied.channel), ctx.Output())
		}
		p.applied = want
		p.stale = false
		p.scheduler.SetAction(p.buildAction(want))
	}

	p.scheduler.Process(ctx.Transport, ctx.NumSamples(), ctx.Output())
	return pluginapi.StatusNormal
}

// State returns the scheduler state after the last buffer.
func (p *Processor) State() sequencer.State {
	return p.scheduler.State()
}

// Action returns the step action currently in effect.
func (p *Processor) Action() sequencer.StepAction {
	return p.scheduler.Action()
}

func (p *Processor) readParams(params *param.Registry) actionParams {
	return actionParams{
		kind:     sequencer.ActionKind(params.Get(ParamMode).GetIntValue()),
		note:     params.Get(ParamNote).GetIntValue(),
		velocity: params.Get(ParamVelocity).GetIntValue(),
		channel:  params.Get(ParamChannel).GetIntValue(),
	}
}

func (p *Processor) buildAction(ap actionParams) sequencer.StepAction {
	if ap.kind == sequencer.ActionFixedChord {
		n := 0
		for _, off := range p.chordOffsets[:p.numOffsets] {
			note := ap.note + off
			if note < 0 || note > 127 {
				continue
			}
			p.chordNotes[n] = uint8(note)
			n++
		}
		return sequencer.FixedChord(p.chordNotes[:n], uint8(ap.velocity), uint8(ap.channel))
	}
	return sequencer.AlternatingGate(uint8(ap.note), uint8(ap.velocity), uint8(ap.channel))
}

// SaveState writes the parameters and chord shape for the host to store.
func (p *Processor) SaveState(w io.Writer) error {
	return p.state.Save(w)
}

// LoadState restores a blob written by SaveState. It must not run
// concurrently with Process; the new settings apply from the next buffer.
func (p *Processor) LoadState(r io.Reader) error {
	return p.state.Load(r)
}

// SaveCustom writes the chord offsets: a count byte, then one signed byte
// per offset.
func (p *Processor) SaveCustom(w io.Writer) error {
	data := make([]byte, 0, 1+p.numOffsets)
	data = append(data, byte(p.numOffsets))
	for _, off := range p.chordOffsets[:p.numOffsets] {
		data = append(data, byte(int8(off)))
	}
	_, err := w.Write(data)
	return err
}

// LoadCustom restores chord offsets written by SaveCustom.
func (p *Processor) LoadCustom(data []byte) error {
	if len(data) == 0 || int(data[0]) != len(data)-1 || int(data[0]) > len(p.chordOffsets) {
		return fmt.Errorf("bad chord chunk of %d bytes", len(data))
	}
	p.numOffsets = int(data[0])
	for i, b := range data[1:] {
		p.chordOffsets[i] = int(int8(b))
	}
	p.stale = true
	return nil
}
