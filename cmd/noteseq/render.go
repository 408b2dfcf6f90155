package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/jalopymusic/noteseq/pkg/capture"
	"github.com/jalopymusic/noteseq/pkg/config"
	"github.com/jalopymusic/noteseq/pkg/framework/debug"
	"github.com/jalopymusic/noteseq/pkg/host"
	"github.com/jalopymusic/noteseq/pkg/noteseq"
)

// sessionFlags are shared by render and watch.
type sessionFlags struct {
	configPath string
	tempo      float64
	rate       float64
	buffer     int
	mode       string
	note       int
	logLevel   string
}

func (s *sessionFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.configPath, "config", "", "JSON config file")
	fs.Float64Var(&s.tempo, "tempo", 0, "tempo in BPM (default from config)")
	fs.Float64Var(&s.rate, "rate", 0, "sample rate in Hz (default from config)")
	fs.IntVar(&s.buffer, "buffer", 0, "buffer size in samples (default from config)")
	fs.StringVar(&s.mode, "mode", "", "step action: alternating-gate or fixed-chord")
	fs.IntVar(&s.note, "note", -1, "MIDI note number")
	fs.StringVar(&s.logLevel, "log", "", "log level: debug, info, warn, error, off")
}

// load reads the config and applies explicit flags over it.
func (s *sessionFlags) load() (*config.Config, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, err
	}
	if s.tempo != 0 {
		cfg.Render.Tempo = s.tempo
	}
	if s.rate != 0 {
		cfg.Render.SampleRate = s.rate
	}
	if s.buffer != 0 {
		cfg.Render.BufferSize = s.buffer
	}
	if s.mode != "" {
		cfg.StepAction.Mode = s.mode
	}
	if s.note >= 0 {
		cfg.StepAction.Note = s.note
	}
	if s.logLevel != "" {
		cfg.Log.Level = s.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, usageError{err}
	}
	return cfg, nil
}

// session is a started host around a note sequencer.
type session struct {
	cfg    *config.Config
	proc   *noteseq.Processor
	host   *host.Host
	logger *debug.Logger
	closer io.Closer
}

func newSession(cfg *config.Config, stderr io.Writer, profile bool) (*session, error) {
	logger, closer, err := cfg.Logger(stderr)
	if err != nil {
		return nil, err
	}

	pl, err := noteseq.NewPlugin(cfg, cfg.Reporter(logger))
	if err != nil {
		closer.Close()
		return nil, err
	}
	proc := pl.NewProcessor()
	hc := host.Config{
		SampleRate: cfg.Render.SampleRate,
		Tempo:      cfg.Render.Tempo,
		BlockSize:  cfg.Render.BufferSize,
		MaxEvents:  noteseq.MaxEventsPerBuffer,
		Logger:     logger,
	}
	if profile {
		hc.ProfileDepth = 4096
	}
	h, err := host.New(proc, hc)
	if err != nil {
		closer.Close()
		return nil, err
	}
	if err := h.Start(); err != nil {
		closer.Close()
		return nil, err
	}
	return &session{cfg: cfg, proc: proc, host: h, logger: logger, closer: closer}, nil
}

func (s *session) Close() error {
	return errors.Join(s.host.Close(), s.closer.Close())
}

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var sf sessionFlags
	sf.register(fs)
	beats := fs.Float64("beats", 8, "beats to play when no -script is given")
	scriptText := fs.String("script", "", "transport script, e.g. 'play; run 100x480; seek 4; run 50'")
	smfPath := fs.String("smf", "", "also write the events to this Standard MIDI File")
	profile := fs.Bool("profile", false, "print process-call timing")
	quiet := fs.Bool("q", false, "print only the summary")
	loadState := fs.String("load-state", "", "restore plugin state from this file before rendering")
	saveState := fs.String("save-state", "", "write plugin state to this file after rendering")

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

	script, err := buildScript(*scriptText, *beats, cfg)
	if err != nil {
		return usageError{err}
	}

	s, err := newSession(cfg, stderr, *profile)
	if err != nil {
		return err
	}
	defer s.Close()

	if *loadState != "" {
		if err := loadStateFile(s.host, *loadState); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	events, err := s.host.Run(ctx, script)
	if err != nil {
		return err
	}

	if !*quiet {
		printEvents(stdout, events)
	}
	fmt.Fprintf(stdout, "%d events in %d buffers (%d samples, %s)\n",
		len(events), s.host.Buffers(), s.host.Elapsed(), script)

	if *profile {
		fmt.Fprint(stdout, s.host.Profiler().Report())
		if m, ok := s.host.Profiler().Measurement(host.ProfileName); ok {
			fmt.Fprintf(stdout, "load: %.4f%% of real time\n", 100*m.Load(cfg.Render.SampleRate, cfg.Render.BufferSize))
		}
	}

	if *smfPath != "" {
		opts := capture.Options{
			Tempo:      cfg.Render.Tempo,
			SampleRate: cfg.Render.SampleRate,
			TrackName:  noteseq.Info.Name,
		}
		if err := capture.WriteFile(*smfPath, events, opts); err != nil {
			return fmt.Errorf("write %s: %w", *smfPath, err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", *smfPath)
	}

	if *saveState != "" {
		if err := saveStateFile(s.host, *saveState); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "saved state to %s\n", *saveState)
	}
	return nil
}

func loadStateFile(h *host.Host, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := h.LoadState(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func saveStateFile(h *host.Host, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return h.SaveState(f)
}

// buildScript returns the parsed script, or play-for-beats when text is
// empty.
func buildScript(text string, beats float64, cfg *config.Config) (host.Script, error) {
	if text != "" {
		return host.ParseScript(text)
	}
	if beats <= 0 {
		return nil, fmt.Errorf("-beats must be positive")
	}
	samples := beats * 60 / cfg.Render.Tempo * cfg.Render.SampleRate
	buffers := int(math.Ceil(samples / float64(cfg.Render.BufferSize)))
	return host.Play(buffers, cfg.Render.BufferSize), nil
}

func printEvents(w io.Writer, events []host.Event) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "sample\tbeat\tbuffer\toffset\tbytes\tevent\t")
	for _, ev := range events {
		fmt.Fprintf(tw, "%d\t%.4f\t%d\t%d\t% X\t%s\t\n",
			ev.Sample, ev.PosBeats, ev.Buffer, ev.Offset, ev.Message().Bytes(), ev.TimedEvent)
	}
	tw.Flush()
}
