// Package plugin defines the contract between a host and a plugin.
package plugin

import (
	"io"

	"github.com/jalopymusic/noteseq/pkg/framework/bus"
	"github.com/jalopymusic/noteseq/pkg/framework/param"
	"github.com/jalopymusic/noteseq/pkg/framework/plugin"
	"github.com/jalopymusic/noteseq/pkg/framework/process"
)

// Status is returned by every process call.
type Status int

const (
	// StatusNormal means processing continues.
	StatusNormal Status = iota
	// StatusError means the processor cannot continue.
	StatusError
)

func (s Status) String() string {
	if s == StatusNormal {
		return "normal"
	}
	return "error"
}

// Plugin is a factory for processors plus the metadata a host lists.
type Plugin interface {
	GetInfo() plugin.Info
	CreateProcessor() Processor
}

// Processor is driven by the host: Initialize, SetActive(true), then one
// Process call per buffer from a single thread, SetActive(false) when
// playback ends.
type Processor interface {
	// Initialize is called before activation and whenever the sample rate
	// changes.
	Initialize(sampleRate float64, maxBlockSize int32) error

	// Process handles one buffer. It must not allocate or block.
	Process(ctx *process.Context) Status

	GetParameters() *param.Registry
	GetBuses() *bus.Configuration

	// SetActive starts or stops processing; stopping resets.
	SetActive(active bool) error

	// Reset discards everything learned from the transport.
	Reset()

	GetLatencySamples() int32
	GetTailSamples() int32
}

// Stateful is implemented by processors whose settings a host stores with
// the project. Neither method may run concurrently with Process.
type Stateful interface {
	SaveState(w io.Writer) error
	LoadState(r io.Reader) error
}
