// File: internal/output/console.go
package output

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// Console renders the report for a developer terminal. Advice and other
// warning lines come out yellow unless colors are disabled.
type Console struct {
	out  io.Writer
	warn *color.Color
}

// ConsoleOption customizes a console reporter.
type ConsoleOption func(*Console)

// WithWriter redirects console output, mainly for tests.
func WithWriter(w io.Writer) ConsoleOption {
	return func(c *Console) {
		c.out = w
	}
}

// WithNoColor strips ANSI sequences from the output.
func WithNoColor() ConsoleOption {
	return func(c *Console) {
		c.warn.DisableColor()
	}
}

// WithForceColor keeps ANSI sequences even when the writer is not a
// terminal, which is how CI pipelines get colored logs.
func WithForceColor() ConsoleOption {
	return func(c *Console) {
		c.warn.EnableColor()
	}
}

// NewConsole creates a console reporter writing to stdout by default.
func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		out:  os.Stdout,
		warn: color.New(color.FgYellow),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) Write(_ context.Context, report *diagnosis.Report) error {
	return c.writeLines(RenderLines(report))
}

// WriteIncident renders a single incident block, used by the live watch
// as incidents close.
func (c *Console) WriteIncident(incident diagnosis.ClassifiedIncident) error {
	return c.writeLines(incidentLines(incident))
}

// WriteSummary renders only the trailing summary block of a report.
func (c *Console) WriteSummary(report *diagnosis.Report) error {
	return c.writeLines(summaryLines(report))
}

func (c *Console) writeLines(lines []Line) error {
	for _, line := range lines {
		var err error
		switch line.Level {
		case LevelWarn:
			_, err = c.warn.Fprintln(c.out, line.Text)
		default:
			_, err = fmt.Fprintln(c.out, line.Text)
		}
		if err != nil {
			return fmt.Errorf("failed to write console report: %w", err)
		}
	}
	return nil
}

func (c *Console) Close() error {
	return nil
}
