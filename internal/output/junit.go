// File: internal/output/junit.go
package output

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// JUnit renders the report as a JUnit XML test suite so CI dashboards can
// surface build incidents next to test failures. Each incident becomes a
// failed test case; a clean log becomes a single passing case.
type JUnit struct {
	out io.WriteCloser
}

// NewJUnit creates a JUnit XML reporter around w.
func NewJUnit(w io.WriteCloser) *JUnit {
	return &JUnit{out: w}
}

func (j *JUnit) Write(_ context.Context, report *diagnosis.Report) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	suite := doc.CreateElement("testsuite")
	suite.CreateAttr("name", "droidforge build diagnosis")
	suite.CreateAttr("tests", strconv.Itoa(max(len(report.Incidents), 1)))
	suite.CreateAttr("failures", strconv.Itoa(len(report.Incidents)))

	if len(report.Incidents) == 0 {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("classname", report.LogPath)
		if report.LogMissing {
			tc.CreateAttr("name", "build log missing")
			skipped := tc.CreateElement("skipped")
			skipped.CreateAttr("message", "build log not found")
		} else {
			tc.CreateAttr("name", "no build errors")
		}
	}

	for _, incident := range report.Incidents {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("classname", report.LogPath)
		tc.CreateAttr("name", fmt.Sprintf("incident #%d (log line %d)", incident.Ordinal, incident.Line))

		failure := tc.CreateElement("failure")
		failure.CreateAttr("message", incident.Category)
		failure.SetText(incident.Text() + "\n\nAdvice: " + incident.Advice)
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(j.out); err != nil {
		return fmt.Errorf("failed to write JUnit report: %w", err)
	}
	return nil
}

func (j *JUnit) Close() error {
	return j.out.Close()
}
