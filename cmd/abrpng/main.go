// Command abrpng extracts the image brushes of an Adobe ABR file into a
// directory of greyscale images.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jdeng/goabr/internal/dedup"
	"github.com/jdeng/goabr/internal/sink"
	"github.com/jdeng/goabr/internal/source"
	"github.com/jdeng/goabr/pkg/abr"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err == nil {
		err = run(cfg, stdout, stderr)
	}
	if err != nil {
		report(stderr, err)
		return 1
	}
	return 0
}

// report prints err and, when one is known, a hint on how to fix it.
func report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
	var ce *cliError
	if errors.As(err, &ce) && ce.hint != "" {
		fmt.Fprintln(w, ce.hint)
	}
}

// run extracts every brush of cfg.Input. Failures before the first brush
// is read are returned; per-brush failures are printed and skipped.
func run(cfg Config, stdout, stderr io.Writer) error {
	lg := newLogger(stdout, cfg.Verbose)

	in, err := source.Open(cfg.Input)
	if err != nil {
		return &cliError{err: fmt.Errorf("couldn't open file %s: %w", cfg.Input, err)}
	}
	defer in.Close()
	lg.Info("input %s (%s)", cfg.Input, in.Kind)

	dec, err := abr.Open(in, abr.Options{SkipNames: cfg.SkipNames})
	if err != nil {
		return &cliError{err: fmt.Errorf("couldn't open as ABR: %w", err), hint: hintNotABR}
	}
	lg.Info("format %s", dec.Format())

	if err := os.Mkdir(cfg.OutputDir, 0o755); err != nil {
		ce := &cliError{err: fmt.Errorf("couldn't create output directory %s: %w", cfg.OutputDir, err)}
		if errors.Is(err, fs.ErrExist) {
			ce.hint = hintDirUsed
		}
		return ce
	}

	var seen *dedup.Set
	if cfg.Dedup {
		seen = dedup.NewSet()
	}

	var written, failed, skipped int
	idx := 0
	for brush, err := range dec.All() {
		i := idx
		idx++
		if err != nil {
			fmt.Fprintf(stderr, "Error saving brush #%d: couldn't read brush: %v\n", i, err)
			failed++
			continue
		}
		lg.Info("brush #%d at %d: %dx%d, depth %d, name %q",
			i, brush.Offset(), brush.Width(), brush.Height(), brush.Depth(), brush.Name())

		width, height, depth := uint32(brush.Width()), uint32(brush.Height()), uint16(brush.Depth())
		if seen != nil {
			if first, dup := seen.Add(i, width, height, depth, brush.Data()); dup {
				fmt.Fprintf(stdout, "Skipped brush #%d (duplicate of #%d).\n", i, first)
				skipped++
				continue
			}
		}

		path := filepath.Join(cfg.OutputDir, strconv.Itoa(i)+cfg.Format.Ext())
		if err := sink.Save(path, cfg.Format, brush.Data(), width, height, depth); err != nil {
			fmt.Fprintf(stderr, "Error saving brush #%d: %v\n", i, err)
			failed++
			continue
		}
		fmt.Fprintf(stdout, "Wrote %s.\n", path)
		written++
	}

	if idx == 0 {
		lg.Warn("no brushes found")
	}
	lg.Total(written, failed, skipped)
	return nil
}
