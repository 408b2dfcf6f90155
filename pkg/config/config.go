// Package config loads the note sequencer configuration from JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jalopymusic/noteseq/pkg/framework/debug"
	"github.com/jalopymusic/noteseq/pkg/sequencer"
)

// Mode names accepted in stepAction.mode.
const (
	ModeAlternatingGate = "alternating-gate"
	ModeFixedChord      = "fixed-chord"
)

// StepActionConfig describes what happens on every beat.
type StepActionConfig struct {
	Mode     string `json:"mode"`
	Note     int    `json:"note"`
	Chord    []int  `json:"chord,omitempty"` // semitone offsets from Note, fixed-chord only
	Velocity int    `json:"velocity"`
	Channel  int    `json:"channel"` // zero-based
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `json:"level"`
	Prefix string `json:"prefix,omitempty"`
	File   string `json:"file,omitempty"` // empty logs to stderr
	Every  int    `json:"every,omitempty"`
}

// RenderConfig holds defaults for offline rendering.
type RenderConfig struct {
	Tempo      float64 `json:"tempo"`
	SampleRate float64 `json:"sampleRate"`
	BufferSize int     `json:"bufferSize"`
}

// Config is the main configuration structure
type Config struct {
	StepAction StepActionConfig `json:"stepAction"`
	Render     RenderConfig     `json:"render"`
	Log        LogConfig        `json:"log"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		StepAction: StepActionConfig{
			Mode:     ModeAlternatingGate,
			Note:     60,
			Chord:    []int{0, 4, 7},
			Velocity: 102,
			Channel:  0,
		},
		Render: RenderConfig{
			Tempo:      120,
			SampleRate: 48000,
			BufferSize: 512,
		},
		Log: LogConfig{
			Level:  "warn",
			Prefix: "noteseq",
			Every:  1000,
		},
	}
}

// Load reads the config at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	var errs []error
	sa := c.StepAction

	if _, err := sequencer.ParseActionKind(sa.Mode); err != nil {
		errs = append(errs, fmt.Errorf("stepAction.mode: %w", err))
	}
	if sa.Note < 0 || sa.Note > 127 {
		errs = append(errs, fmt.Errorf("stepAction.note %d out of range 0-127", sa.Note))
	}
	if sa.Velocity < 1 || sa.Velocity > 127 {
		errs = append(errs, fmt.Errorf("stepAction.velocity %d out of range 1-127", sa.Velocity))
	}
	if sa.Channel < 0 || sa.Channel > 15 {
		errs = append(errs, fmt.Errorf("stepAction.channel %d out of range 0-15", sa.Channel))
	}
	if len(sa.Chord) > sequencer.MaxChordNotes {
		errs = append(errs, fmt.Errorf("stepAction.chord has %d notes, max %d", len(sa.Chord), sequencer.MaxChordNotes))
	}
	for _, off := range sa.Chord {
		if n := sa.Note + off; n < 0 || n > 127 {
			errs = append(errs, fmt.Errorf("stepAction.chord offset %d puts note %d out of range", off, n))
		}
	}

	if c.Render.Tempo <= 0 {
		errs = append(errs, fmt.Errorf("render.tempo must be positive, got %v", c.Render.Tempo))
	}
	if c.Render.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("render.sampleRate must be positive, got %v", c.Render.SampleRate))
	}
	if c.Render.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("render.bufferSize must be positive, got %d", c.Render.BufferSize))
	}

	if _, err := debug.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// ChordNotes returns the absolute notes of the configured chord.
func (c *Config) ChordNotes() []uint8 {
	notes := make([]uint8, 0, len(c.StepAction.Chord))
	for _, off := range c.StepAction.Chord {
		notes = append(notes, uint8(c.StepAction.Note+off))
	}
	return notes
}

// Action builds the configured step action.
func (c *Config) Action() (sequencer.StepAction, error) {
	kind, err := sequencer.ParseActionKind(c.StepAction.Mode)
	if err != nil {
		return sequencer.StepAction{}, err
	}
	sa := c.StepAction
	if kind == sequencer.ActionFixedChord {
		return sequencer.FixedChord(c.ChordNotes(), uint8(sa.Velocity), uint8(sa.Channel)), nil
	}
	return sequencer.AlternatingGate(uint8(sa.Note), uint8(sa.Velocity), uint8(sa.Channel)), nil
}

// Logger opens the configured logger. The closer must be closed when done;
// for stderr it is a no-op.
func (c *Config) Logger(stderr io.Writer) (*debug.Logger, io.Closer, error) {
	level, err := debug.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	var logger *debug.Logger
	var closer io.Closer = io.NopCloser(nil)
	if c.Log.File != "" {
		logger, closer, err = debug.NewFileLogger(c.Log.File, c.Log.Prefix, debug.DefaultFlags)
		if err != nil {
			return nil, nil, err
		}
	} else {
		logger = debug.New(stderr, c.Log.Prefix, debug.FlagLevel|debug.FlagPrefix)
	}
	logger.SetLevel(level)
	return logger, closer, nil
}

// Reporter builds the diagnostic reporter for logger.
func (c *Config) Reporter(logger *debug.Logger) sequencer.Reporter {
	if logger.Level() == debug.LogLevelOff {
		return sequencer.NopReporter{}
	}
	return sequencer.NewLogReporter(logger, c.Log.Every)
}
