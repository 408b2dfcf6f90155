// Command noteseq renders and watches the Note Sequencer offline against a
// simulated host transport.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jalopymusic/noteseq/pkg/noteseq"
)

// Overridable with -ldflags "-X main.commit=abcd123 -X main.date=...".
var (
	commit = "none"
	date   = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(os.Args[2:], os.Stdout, os.Stderr)
	case "watch":
		err = runWatch(os.Args[2:], os.Stderr)
	case "version", "-v", "--version":
		printVersion(os.Stdout)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "noteseq %s: %v\n", os.Args[1], err)
		var ue usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// usageError marks bad command lines.
type usageError struct{ error }

func usage(w io.Writer) {
	fmt.Fprintln(w, "noteseq - beat-synchronized MIDI step sequencer")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  noteseq <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render    run a transport script and print the emitted events")
	fmt.Fprintln(w, "  watch     live terminal view of the sequencer following a transport")
	fmt.Fprintln(w, "  version   print version information")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  noteseq render -beats 8 -buffer 480")
	fmt.Fprintln(w, "  noteseq render -script 'play; run 100; set note E4; pause; run 10; play; run 100' -smf out.mid")
	fmt.Fprintln(w, "  noteseq watch -tempo 96 -config noteseq.json")
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "noteseq %s (commit %s, built %s)\n", noteseq.Version, commit, date)
	fmt.Fprintf(w, "plugin  %s\n", noteseq.Info)
	fmt.Fprintf(w, "class   %s\n", noteseq.Info.UID())
}
