// File: internal/output/text.go
package output

import (
	"context"
	"fmt"
	"io"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// Text writes the plain report layout to an arbitrary writer, usually a
// file handed over by New.
type Text struct {
	out io.WriteCloser
}

// NewText creates a plain-text reporter around w.
func NewText(w io.WriteCloser) *Text {
	return &Text{out: w}
}

func (t *Text) Write(_ context.Context, report *diagnosis.Report) error {
	for _, line := range RenderLines(report) {
		if _, err := fmt.Fprintln(t.out, line.Text); err != nil {
			return fmt.Errorf("failed to write text report: %w", err)
		}
	}
	return nil
}

func (t *Text) Close() error {
	return t.out.Close()
}
