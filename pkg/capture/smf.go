// Package capture writes rendered events to Standard MIDI Files.
package capture

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jalopymusic/noteseq/pkg/host"
)

// Resolution is the tick resolution of written files (ticks per quarter
// note).
const Resolution = 960

// Options control the written file.
type Options struct {
	Tempo      float64 // BPM written to the tempo track
	SampleRate float64 // sample rate the event positions refer to
	TrackName  string
}

// Ticks converts a host sample position to a tick position at the file
// tempo.
func (o Options) Ticks(sample int64) uint32 {
	beats := float64(sample) / o.SampleRate * o.Tempo / 60
	return uint32(math.Round(beats * Resolution))
}

func (o Options) validate() error {
	if o.Tempo <= 0 {
		return fmt.Errorf("tempo must be positive, got %v", o.Tempo)
	}
	if o.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %v", o.SampleRate)
	}
	return nil
}

// Build creates a format 1 SMF: a tempo track and one track holding the
// events in host order. Events are placed by their host sample position, so
// pauses in the transport appear as silence.
func Build(events []host.Event, opts Options) (*smf.SMF, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(Resolution)

	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaMeter(4, 4))
	tempoTrack.Add(0, smf.MetaTempo(opts.Tempo))
	tempoTrack.Close(0)
	if err := s.Add(tempoTrack); err != nil {
		return nil, fmt.Errorf("add tempo track: %w", err)
	}

	var track smf.Track
	if opts.TrackName != "" {
		track.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	}
	var last uint32
	for i, ev := range events {
		at := opts.Ticks(ev.Sample)
		if at < last {
			return nil, fmt.Errorf("event %d at sample %d is earlier than the one before it", i, ev.Sample)
		}
		track.Add(at-last, ev.Message())
		last = at
	}
	track.Close(0)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("add event track: %w", err)
	}
	return s, nil
}

// Write encodes events as an SMF to w.
func Write(w io.Writer, events []host.Event, opts Options) error {
	s, err := Build(events, opts)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}

// WriteFile encodes events as an SMF at path.
func WriteFile(path string, events []host.Event, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return Write(f, events, opts)
}
