package main

import (
	"io"
	"log"
	"time"
)

// logger prints progress details when verbose output is enabled.
type logger struct {
	l       *log.Logger
	verbose bool
	start   time.Time
}

func newLogger(w io.Writer, verbose bool) *logger {
	return &logger{l: log.New(w, "", 0), verbose: verbose, start: time.Now()}
}

func (lg *logger) Info(format string, args ...any) {
	if lg.verbose {
		lg.l.Printf("  * "+format, args...)
	}
}

func (lg *logger) Warn(format string, args ...any) {
	if lg.verbose {
		lg.l.Printf("  ! "+format, args...)
	}
}

// Total prints the summary line with the elapsed time.
func (lg *logger) Total(written, failed, skipped int) {
	if lg.verbose {
		lg.l.Printf("Done: %d written, %d failed, %d skipped (%.2fs)",
			written, failed, skipped, time.Since(lg.start).Seconds())
	}
}
