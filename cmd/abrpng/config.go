package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/jdeng/goabr/internal/sink"
	"github.com/jdeng/goabr/internal/source"
)

// Config holds the parsed command line.
type Config struct {
	Input     string
	OutputDir string
	Format    sink.Format
	Dedup     bool
	SkipNames bool
	Verbose   bool
}

const usageBrief = `Extracts image brushes from Adobe ABR files.

Usage:
    abrpng [-o DIR] [-format png|tiff|bmp] [-dedup] [-v] INPUT
`

// cliError carries a message for the user and an optional hint on how to
// fix it.
type cliError struct {
	err  error
	hint string
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

const (
	hintHelp    = "Use -h for help."
	hintNotABR  = "Ensure the provided file was an ABR. If it was, it's unsupported, sorry :("
	hintDirUsed = "The output directory will be created. Make sure it doesn't already exist."
)

func parseConfig(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("abrpng", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageBrief+"\nOptions:\n")
		fs.PrintDefaults()
	}

	var cfg Config
	var format string
	fs.StringVar(&cfg.OutputDir, "o", "", "set output directory (will be created)")
	fs.StringVar(&format, "format", string(sink.FormatPNG), "output image format: png, tiff or bmp")
	fs.BoolVar(&cfg.Dedup, "dedup", false, "skip brushes identical to an earlier one")
	fs.BoolVar(&cfg.SkipNames, "skip-names", false, "do not decode version 2 brush names")
	fs.BoolVar(&cfg.Verbose, "v", false, "print the detected format and per-brush details")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cfg, err
		}
		return cfg, &cliError{err: fmt.Errorf("bad command-line option: %w", err), hint: hintHelp}
	}

	if fs.NArg() != 1 {
		return cfg, &cliError{
			err:  fmt.Errorf("expected exactly one input file but got %d", fs.NArg()),
			hint: hintHelp,
		}
	}
	cfg.Input = fs.Arg(0)

	f, err := sink.ParseFormat(format)
	if err != nil {
		return cfg, &cliError{err: err, hint: hintHelp}
	}
	cfg.Format = f

	if cfg.OutputDir == "" {
		// mybrushes.abr => ./mybrushes
		stem := source.TrimExt(filepath.Base(cfg.Input))
		if stem == "" || stem == "." || stem == string(filepath.Separator) {
			return cfg, &cliError{err: errors.New("couldn't guess output name from input"), hint: hintHelp}
		}
		cfg.OutputDir = stem
	}
	return cfg, nil
}
