// File: internal/output/json.go
package output

import (
	"context"
	"fmt"
	"io"

	json "github.com/json-iterator/go"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// JSON emits the report as one indented JSON document, suitable for
// archiving as a CI artifact or piping into jq.
type JSON struct {
	out io.WriteCloser
}

// NewJSON creates a JSON reporter around w.
func NewJSON(w io.WriteCloser) *JSON {
	return &JSON{out: w}
}

func (j *JSON) Write(_ context.Context, report *diagnosis.Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

func (j *JSON) Close() error {
	return j.out.Close()
}
