// File: internal/diagnosis/engine.go
package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nullpath9/droidforge/internal/logfile"
)

// DefaultMarkerPath is the well-known relative path of the zero-byte
// failure marker that downstream CI steps test for.
const DefaultMarkerPath = ".build_failed"

// Engine runs the full diagnosis pass over one build log: segment,
// classify each incident against the table, assemble the report, and own
// the failure-marker side effect.
type Engine struct {
	table      Table
	markerPath string
	logger     *zap.Logger
}

// New builds an engine over the given signature table. An empty markerPath
// selects DefaultMarkerPath; a nil logger is replaced with a no-op one.
func New(table Table, markerPath string, logger *zap.Logger) *Engine {
	if markerPath == "" {
		markerPath = DefaultMarkerPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		table:      table,
		markerPath: markerPath,
		logger:     logger.Named("engine"),
	}
}

// Diagnose reads the build log at logPath and returns the classified
// report. A missing log is not an error: the report comes back flagged
// LogMissing with zero incidents and no marker. When at least one incident
// was found the zero-byte marker is written, exactly once per call.
func (e *Engine) Diagnose(ctx context.Context, logPath string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString(), LogPath: logPath}

	rc, err := logfile.Open(logPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("Build log not found, nothing to diagnose.",
				zap.String("run_id", report.RunID),
				zap.String("path", logPath))
			report.LogMissing = true
			return report, nil
		}
		return nil, err
	}
	defer rc.Close()

	incidents, err := Segment(rc)
	if err != nil {
		return nil, err
	}
	for i, in := range incidents {
		report.Incidents = append(report.Incidents, ClassifiedIncident{
			Ordinal:        i + 1,
			Incident:       in,
			Classification: e.table.Classify(in.Text()),
		})
	}

	e.logger.Info("Diagnosis complete.",
		zap.String("run_id", report.RunID),
		zap.String("path", logPath),
		zap.Int("incidents", report.Count()))

	if report.Failed() {
		if err := e.writeMarker(); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// writeMarker truncate-creates the marker so reruns leave it zero bytes.
// Only its existence signals anything.
func (e *Engine) writeMarker() error {
	f, err := os.Create(e.markerPath)
	if err != nil {
		return fmt.Errorf("failed to create failure marker %q: %w", e.markerPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close failure marker: %w", err)
	}
	e.logger.Info("Failure marker written.", zap.String("path", e.markerPath))
	return nil
}
