// Package noteseq is the Note Sequencer plugin: a MIDI generator that plays
// one step per beat of the host transport.
package noteseq

import (
	"github.com/jalopymusic/noteseq/pkg/config"
	"github.com/jalopymusic/noteseq/pkg/framework/plugin"
	pluginapi "github.com/jalopymusic/noteseq/pkg/plugin"
	"github.com/jalopymusic/noteseq/pkg/sequencer"
)

// Version is the plugin version reported to hosts.
const Version = "0.1.0"

// Info describes the plugin to hosts.
var Info = plugin.Info{
	ID:          "com.jalopymusic.note-sequencer",
	Name:        "Note Sequencer",
	Version:     Version,
	Vendor:      "Jalopy Music",
	URL:         "https://github.com/jalopymusic/noteseq",
	Description: "Sends a note on every beat of the host transport",
	Category:    plugin.CategoryInstrument,
	Features:    []string{"note-effect", "utility"},
}

// Plugin creates Note Sequencer processors sharing one configuration.
type Plugin struct {
	*plugin.Base

	cfg      *config.Config
	reporter sequencer.Reporter
}

// NewPlugin creates the plugin. A nil cfg uses config.Default(); a nil
// reporter discards diagnostics.
func NewPlugin(cfg *config.Config, reporter sequencer.Reporter) (*Plugin, error) {
	base, err := plugin.NewBase(Info)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Plugin{Base: base, cfg: cfg, reporter: reporter}, nil
}

// NewProcessor creates a processor with the plugin's configuration.
func (p *Plugin) NewProcessor() *Processor {
	return NewProcessor(p.cfg, p.reporter)
}

func (p *Plugin) CreateProcessor() pluginapi.Processor {
	return p.NewProcessor()
}
