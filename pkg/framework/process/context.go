// Package process provides the per-buffer processing context handed to a
// processor by the host.
package process

import (
	"github.com/jalopymusic/noteseq/pkg/framework/param"
	"github.com/jalopymusic/noteseq/pkg/midi"
	"github.com/jalopymusic/noteseq/pkg/transport"
)

// Context provides a clean API for one processing call with zero
// allocations. The host fills Transport and numSamples before each call and
// drains the output events afterwards.
type Context struct {
	SampleRate float64
	Transport  transport.Snapshot

	numSamples int

	output *midi.Buffer

	// Parameter access
	params *param.Registry
}

// NewContext creates a new process context whose output buffer holds up to
// maxEvents events per call.
func NewContext(maxEvents int, params *param.Registry) *Context {
	return &Context{
		output: midi.NewBuffer(maxEvents),
		params: params,
	}
}

// Begin prepares the context for a new buffer. Output events from the
// previous call are discarded.
func (c *Context) Begin(snap transport.Snapshot, numSamples int) {
	c.Transport = snap
	c.numSamples = numSamples
	c.output.Reset()
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	return c.numSamples
}

// Params returns the registry parameter changes are applied to.
func (c *Context) Params() *param.Registry {
	return c.params
}

// SetParameterAtOffset applies a host parameter change (normalized value).
// Changes take effect for the whole block; sampleOffset is accepted for
// hosts that send it. It reports false for an unknown ID.
func (c *Context) SetParameterAtOffset(paramID uint32, value float64, sampleOffset int) bool {
	p := c.params.Get(paramID)
	if p == nil {
		return false
	}
	p.SetValue(value)
	return true
}

// Output returns the buffer processors write their events to.
func (c *Context) Output() *midi.Buffer {
	return c.output
}

// OutputEvents returns the events produced during the current call.
func (c *Context) OutputEvents() []midi.TimedEvent {
	return c.output.Events()
}
