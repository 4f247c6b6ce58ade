// Package cli implements the xkcdify command-line interface.
//
// This package provides commands for sketching SVG documents, inspecting
// which elements a run would touch, looking up fonts, serving the HTTP API,
// and managing the result cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - sketch: Redraw the paths of a document and optionally replace its fonts
//   - tree: Show the element tree and which elements a run would touch
//   - fonts: List installed fonts or read the family name of a font file
//   - serve: Run the HTTP API
//   - cache: Inspect and clean the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Logs go to
// stderr so that documents written to stdout stay clean.
//
// # Configuration
//
// Options are read from a TOML file (--config), then a named preset
// (--preset), then command-line flags. A flag only overrides the file when it
// is given explicitly.
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

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created,
// rounded to the millisecond. Example output: "Sketched drawing.svg (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
