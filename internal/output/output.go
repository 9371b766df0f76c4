// File: internal/output/output.go
package output

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// Reporter receives a finished diagnosis report. Implementations decide
// transport and encoding; incident ordering and the incident to
// classification pairing are fixed by the report itself.
type Reporter interface {
	Write(ctx context.Context, report *diagnosis.Report) error
	// Close finalizes the report and releases any underlying resources.
	Close() error
}

// Format selects a report encoding.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJUnit Format = "junit"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatJUnit:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported report format %q (want text, json or junit)", s)
	}
}

// nopWriteCloser wraps an io.Writer with a no-op Close so stdout is never
// closed by a sink.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for the given format writing to path. An empty
// path or "-" selects stdout.
func New(format Format, path string) (Reporter, error) {
	var writer io.WriteCloser
	if path == "" || path == "-" {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create report file %s: %w", path, err)
		}
		writer = f
	}

	switch format {
	case FormatJSON:
		return NewJSON(writer), nil
	case FormatJUnit:
		return NewJUnit(writer), nil
	case FormatText:
		return NewText(writer), nil
	default:
		writer.Close()
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}
