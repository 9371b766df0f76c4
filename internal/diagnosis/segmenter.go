// File: internal/diagnosis/segmenter.go
package diagnosis

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Incident is one contiguous block of related error output lifted from a
// build log. The first line is always the trigger that opened it.
type Incident struct {
	// Line is the 1-based position of the trigger line in the log.
	Line int `json:"line"`
	// Lines holds the raw text, trigger first. Never empty.
	Lines []string `json:"lines"`
}

// Text joins the incident back into one block. Classification runs over
// this joined form, so a pattern may match content on any absorbed line.
func (in Incident) Text() string {
	return strings.Join(in.Lines, "\n")
}

// Substrings that open a new incident wherever they appear in a line,
// compared case-insensitively.
var triggerMarks = []string{" error:", " fatal error:", "undefined reference to"}

// makeStepRegex matches make's sub-process prefix, e.g. "make[2]:".
// Paired with "***" on the same line it marks a failing build step.
var makeStepRegex = regexp.MustCompile(`make\[\d+\]:`)

type scanState int

const (
	stateIdle scanState = iota
	stateInIncident
)

// Segmenter converts a flat line sequence into incidents with a two-state
// automaton. It is fed one line at a time, which lets batch scans and live
// tailing share the exact same transitions.
//
// A trigger line always opens a fresh incident, closing any open one
// first. An open incident then absorbs every following line up to the next
// blank line or trigger. The zero value is ready to use.
type Segmenter struct {
	state   scanState
	lineNum int
	start   int
	lines   []string
}

// NewSegmenter returns a segmenter in its idle state.
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Feed advances the automaton by one line. When that line closes a
// previously open incident, the closed incident is returned with ok set.
// A trigger line closes the open incident and opens the next in one step.
func (s *Segmenter) Feed(line string) (closed Incident, ok bool) {
	s.lineNum++

	if isTrigger(line) {
		closed, ok = s.flush()
		s.state = stateInIncident
		s.start = s.lineNum
		s.lines = []string{line}
		return closed, ok
	}

	if s.state == stateInIncident && isContinuation(line) {
		s.lines = append(s.lines, line)
		return Incident{}, false
	}

	return s.flush()
}

// Flush force-closes the incident still open at end of input, if any.
func (s *Segmenter) Flush() (Incident, bool) {
	return s.flush()
}

// Open reports whether an incident is currently being captured.
func (s *Segmenter) Open() bool {
	return s.state == stateInIncident
}

func (s *Segmenter) flush() (Incident, bool) {
	if s.state != stateInIncident {
		return Incident{}, false
	}
	in := Incident{Line: s.start, Lines: s.lines}
	s.state = stateIdle
	s.lines = nil
	return in, true
}

// Kernel build logs carry whole compiler invocations on a single line, far
// past bufio's default token size.
const maxLineBytes = 1024 * 1024

// Segment runs the automaton over r and returns every incident in log
// order. Scanning is total: any text, including empty, yields zero or more
// incidents. The only error case is the reader itself failing.
func Segment(r io.Reader) ([]Incident, error) {
	var incidents []Incident

	seg := NewSegmenter()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if in, ok := seg.Feed(scanner.Text()); ok {
			incidents = append(incidents, in)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read build log: %w", err)
	}
	if in, ok := seg.Flush(); ok {
		incidents = append(incidents, in)
	}
	return incidents, nil
}

// isTrigger reports whether the line opens a new incident.
func isTrigger(line string) bool {
	lower := strings.ToLower(line)
	for _, mark := range triggerMarks {
		if strings.Contains(lower, mark) {
			return true
		}
	}
	return false
}

// isContinuation reports whether a non-trigger line extends an open
// incident. The note and make checks are shadowed by the trailing
// non-blank test: an open incident absorbs everything up to the next
// blank line.
func isContinuation(line string) bool {
	if strings.Contains(strings.ToLower(line), "note:") {
		return true
	}
	if makeStepRegex.MatchString(line) && strings.Contains(line, "***") {
		return true
	}
	return strings.TrimSpace(line) != ""
}
