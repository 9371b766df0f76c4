// File: internal/output/render.go
package output

import (
	"fmt"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// Level grades a rendered line for sinks that distinguish severity.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
)

// Line is one row of the human-readable report.
type Line struct {
	Level Level
	Text  string
}

func info(format string, args ...any) Line {
	return Line{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

func warn(format string, args ...any) Line {
	return Line{Level: LevelWarn, Text: fmt.Sprintf(format, args...)}
}

// RenderLines flattens a report into the shared text layout. The console
// and text-file sinks both consume it so the two stay in lockstep.
func RenderLines(report *diagnosis.Report) []Line {
	lines := []Line{info("Build diagnosis for %s", report.LogPath)}

	if report.LogMissing {
		lines = append(lines, warn("Build log not found, nothing to diagnose."))
		return lines
	}
	if len(report.Incidents) == 0 {
		lines = append(lines, info("No build errors found."))
		return lines
	}

	for _, incident := range report.Incidents {
		lines = append(lines, incidentLines(incident)...)
	}
	return append(lines, summaryLines(report)...)
}

// incidentLines renders one incident block. The live watch path prints
// these as incidents close, long before the summary exists.
func incidentLines(incident diagnosis.ClassifiedIncident) []Line {
	lines := []Line{
		info(""),
		info("Incident #%d (log line %d)", incident.Ordinal, incident.Line),
	}
	for _, raw := range incident.Lines {
		lines = append(lines, info("  | %s", raw))
	}
	lines = append(lines, info("Category: %s", incident.Category))
	return append(lines, warn("Advice: %s", incident.Advice))
}

// summaryLines restates every incident's category and advice, then the
// total count as the closing line.
func summaryLines(report *diagnosis.Report) []Line {
	lines := []Line{info(""), info("Summary")}
	for _, incident := range report.Incidents {
		lines = append(lines, info("  #%d %s", incident.Ordinal, incident.Category))
		lines = append(lines, warn("     %s", incident.Advice))
	}
	return append(lines, info("Incidents found: %d", len(report.Incidents)))
}
