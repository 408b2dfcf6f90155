package plugin

import (
	"errors"
	"fmt"

	"github.com/jalopymusic/noteseq/pkg/framework/bus"
	"github.com/jalopymusic/noteseq/pkg/framework/param"
)

// Lifecycle errors.
var (
	ErrNotInitialized = errors.New("processor not initialized")
	ErrActive         = errors.New("processor is active")
)

// Stage is where a processor is in the host lifecycle.
type Stage int

const (
	StageCreated Stage = iota
	StageInitialized
	StageActive
)

func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "created"
	case StageInitialized:
		return "initialized"
	case StageActive:
		return "active"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// BaseProcessor tracks the host lifecycle (created, initialized, active)
// and owns the parameter registry and bus layout. Embedders hook in with
// OnInitialize, OnSetActive and OnReset.
type BaseProcessor struct {
	params *param.Registry
	buses  *bus.Configuration

	stage        Stage
	sampleRate   float64
	maxBlockSize int32

	onInitialize func(sampleRate float64, maxBlockSize int32) error
	onSetActive  func(active bool) error
	onReset      func()
}

// NewBaseProcessor creates a processor in StageCreated. A nil
// configuration means a MIDI-only note generator.
func NewBaseProcessor(buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewNoteGeneratorConfiguration()
	}
	return &BaseProcessor{
		params: param.NewRegistry(),
		buses:  buses,
	}
}

// Initialize records the processing setup. It may be called again to change
// the sample rate, but not while active.
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	if b.stage == StageActive {
		return fmt.Errorf("initialize: %w", ErrActive)
	}
	if b.onInitialize != nil {
		if err := b.onInitialize(sampleRate, maxBlockSize); err != nil {
			return err
		}
	}
	b.sampleRate = sampleRate
	b.maxBlockSize = maxBlockSize
	b.stage = StageInitialized
	return nil
}

// SetActive starts or stops processing. Stopping resets the processor.
// Repeating the current state does nothing.
func (b *BaseProcessor) SetActive(active bool) error {
	switch {
	case b.stage == StageCreated:
		if active {
			return fmt.Errorf("activate: %w", ErrNotInitialized)
		}
		return nil
	case active == (b.stage == StageActive):
		return nil
	}

	if b.onSetActive != nil {
		if err := b.onSetActive(active); err != nil {
			return err
		}
	}
	if active {
		b.stage = StageActive
		return nil
	}
	b.stage = StageInitialized
	b.Reset()
	return nil
}

// Stage returns the current lifecycle stage.
func (b *BaseProcessor) Stage() Stage {
	return b.stage
}

// IsActive reports whether the host has activated processing.
func (b *BaseProcessor) IsActive() bool {
	return b.stage == StageActive
}

// Reset invokes the reset hook, if any.
func (b *BaseProcessor) Reset() {
	if b.onReset != nil {
		b.onReset()
	}
}

// GetParameters returns the parameter registry.
func (b *BaseProcessor) GetParameters() *param.Registry {
	return b.params
}

// GetBuses returns the bus layout.
func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

// GetLatencySamples is always 0: events are emitted in the buffer they
// belong to.
func (b *BaseProcessor) GetLatencySamples() int32 {
	return 0
}

// GetTailSamples is always 0.
func (b *BaseProcessor) GetTailSamples() int32 {
	return 0
}

// SampleRate returns the sample rate of the last successful Initialize.
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// MaxBlockSize returns the largest buffer the host promised to send.
func (b *BaseProcessor) MaxBlockSize() int32 {
	return b.maxBlockSize
}

// Parameters is GetParameters for embedders registering their parameters.
func (b *BaseProcessor) Parameters() *param.Registry {
	return b.params
}

func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int32) error) {
	b.onInitialize = fn
}

func (b *BaseProcessor) OnSetActive(fn func(active bool) error) {
	b.onSetActive = fn
}

func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}
