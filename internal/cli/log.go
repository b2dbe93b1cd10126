// Package cli implements the gridui command-line interface.
//
// Commands lay out layout documents and write the artifacts next to them,
// measure row sizes, validate documents, browse rows interactively, serve
// the HTTP API and manage the result cache. The CLI is built using cobra and
// logs through charmbracelet/log.
//
// # Commands
//
//   - layout: lay out a document and write SVG, JSON, text or tree output
//   - sizes: compare fast and precise row sizes
//   - validate: list every problem in a document
//   - preview: browse the placed rows in the terminal
//   - serve: run the HTTP service
//   - cache: clear the result cache or print its location
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes one line per placed row.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Laid out 12 blocks (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
