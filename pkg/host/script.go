package host

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is one transport or processing instruction.
type Op int

const (
	OpProcess Op = iota // run Buffers buffers of Size samples
	OpPlay
	OpPause
	OpStop
	OpSeek
	OpTempo
	OpPreroll
	OpReset
	OpSet
)

var opNames = map[Op]string{
	OpProcess: "run",
	OpPlay:    "play",
	OpPause:   "pause",
	OpStop:    "stop",
	OpSeek:    "seek",
	OpTempo:   "tempo",
	OpPreroll: "preroll",
	OpReset:   "reset",
	OpSet:     "set",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Cue is one script instruction.
type Cue struct {
	Op      Op
	Value   float64 // beats for seek, BPM for tempo, 0/1 for preroll
	Buffers int     // for OpProcess
	Size    int     // for OpProcess; 0 uses the host block size
	Param   string  // parameter name for OpSet
	Text    string  // displayed value for OpSet, parsed by the parameter
}

func (c Cue) String() string {
	switch c.Op {
	case OpProcess:
		if c.Size > 0 {
			return fmt.Sprintf("run %dx%d", c.Buffers, c.Size)
		}
		return fmt.Sprintf("run %d", c.Buffers)
	case OpSeek, OpTempo:
		return fmt.Sprintf("%s %g", c.Op, c.Value)
	case OpPreroll:
		if c.Value != 0 {
			return "preroll on"
		}
		return "preroll off"
	case OpSet:
		return fmt.Sprintf("set %s %s", c.Param, c.Text)
	}
	return c.Op.String()
}

// Script is a sequence of cues run in order.
type Script []Cue

func (s Script) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return strings.Join(parts, "; ")
}

// Play returns the script: play, then n buffers of size samples.
func Play(n, size int) Script {
	return Script{{Op: OpPlay}, {Op: OpProcess, Buffers: n, Size: size}}
}

// ParseScript parses cues separated by ';' or newlines, for example
// "play; run 100x480; seek 8; tempo 90; set note E4; run 50; pause; run 4".
func ParseScript(text string) (Script, error) {
	var script Script
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ';' || r == '\n' })
	for _, f := range fields {
		words := strings.Fields(f)
		if len(words) == 0 {
			continue
		}
		cue, err := parseCue(words)
		if err != nil {
			return nil, fmt.Errorf("cue %q: %w", strings.TrimSpace(f), err)
		}
		script = append(script, cue)
	}
	return script, nil
}

func parseCue(words []string) (Cue, error) {
	name := strings.ToLower(words[0])
	args := words[1:]

	noArgs := func(op Op) (Cue, error) {
		if len(args) != 0 {
			return Cue{}, fmt.Errorf("%s takes no argument", name)
		}
		return Cue{Op: op}, nil
	}

	switch name {
	case "play":
		return noArgs(OpPlay)
	case "pause":
		return noArgs(OpPause)
	case "stop":
		return noArgs(OpStop)
	case "reset":
		return noArgs(OpReset)
	case "seek", "tempo":
		if len(args) != 1 {
			return Cue{}, fmt.Errorf("%s needs one value", name)
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Cue{}, err
		}
		if name == "tempo" {
			if v <= 0 {
				return Cue{}, fmt.Errorf("tempo must be positive")
			}
			return Cue{Op: OpTempo, Value: v}, nil
		}
		return Cue{Op: OpSeek, Value: v}, nil
	case "preroll":
		if len(args) != 1 {
			return Cue{}, fmt.Errorf("preroll needs on or off")
		}
		switch strings.ToLower(args[0]) {
		case "on":
			return Cue{Op: OpPreroll, Value: 1}, nil
		case "off":
			return Cue{Op: OpPreroll, Value: 0}, nil
		}
		return Cue{}, fmt.Errorf("preroll needs on or off, got %q", args[0])
	case "set":
		if len(args) < 2 {
			return Cue{}, fmt.Errorf("set needs a parameter and a value")
		}
		return Cue{Op: OpSet, Param: args[0], Text: strings.Join(args[1:], " ")}, nil
	case "run":
		if len(args) != 1 {
			return Cue{}, fmt.Errorf("run needs COUNT or COUNTxSIZE")
		}
		return parseRun(args[0])
	}
	return Cue{}, fmt.Errorf("unknown cue %q", name)
}

func parseRun(arg string) (Cue, error) {
	countText, sizeText, hasSize := strings.Cut(strings.ToLower(arg), "x")
	count, err := strconv.Atoi(countText)
	if err != nil || count <= 0 {
		return Cue{}, fmt.Errorf("invalid buffer count %q", countText)
	}
	cue := Cue{Op: OpProcess, Buffers: count}
	if hasSize {
		size, err := strconv.Atoi(sizeText)
		if err != nil || size <= 0 {
			return Cue{}, fmt.Errorf("invalid buffer size %q", sizeText)
		}
		cue.Size = size
	}
	return cue, nil
}
