// File: internal/output/output_test.go
package output

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nullpath9/droidforge/internal/diagnosis"
)

func sampleReport() *diagnosis.Report {
	return &diagnosis.Report{
		RunID:   "3f2c9a1e-test",
		LogPath: "build.log",
		Incidents: []diagnosis.ClassifiedIncident{
			{
				Ordinal: 1,
				Incident: diagnosis.Incident{
					Line: 12,
					Lines: []string{
						"drivers/gpu/msm/adreno.o: in function `adreno_probe': undefined reference to `kgsl_spawn'",
						"collect2: error: ld returned 1 exit status",
					},
				},
				Classification: diagnosis.Classification{
					Category: "Link Error: Missing Library or Function",
					Advice:   "Check that the referenced symbol is built and linked into the image.",
				},
			},
			{
				Ordinal: 2,
				Incident: diagnosis.Incident{
					Line: 40,
					Lines: []string{
						"gcc: error: unrecognized command line option '-mllvm'",
					},
				},
				Classification: diagnosis.Classification{
					Category: "Compiler Option Not Supported",
					Advice:   "The toolchain does not understand this flag.",
				},
			},
		},
	}
}

func emptyReport() *diagnosis.Report {
	return &diagnosis.Report{RunID: "empty-run", LogPath: "build.log"}
}

func TestRenderLines(t *testing.T) {
	t.Run("full report keeps incident order and ends with the count", func(t *testing.T) {
		lines := RenderLines(sampleReport())

		var texts []string
		for _, line := range lines {
			texts = append(texts, line.Text)
		}

		require.Equal(t, "Build diagnosis for build.log", texts[0])
		assert.Contains(t, texts, "Incident #1 (log line 12)")
		assert.Contains(t, texts, "Incident #2 (log line 40)")
		assert.Contains(t, texts, "  | collect2: error: ld returned 1 exit status")
		assert.Contains(t, texts, "Category: Compiler Option Not Supported")
		assert.Equal(t, "Incidents found: 2", texts[len(texts)-1])

		first := -1
		second := -1
		for i, text := range texts {
			if text == "Incident #1 (log line 12)" {
				first = i
			}
			if text == "Incident #2 (log line 40)" {
				second = i
			}
		}
		require.NotEqual(t, -1, first)
		require.NotEqual(t, -1, second)
		assert.Less(t, first, second, "incidents must render in log order")
	})

	t.Run("summary restates every category and advice", func(t *testing.T) {
		lines := RenderLines(sampleReport())

		summaryAt := -1
		for i, line := range lines {
			if line.Text == "Summary" {
				summaryAt = i
			}
		}
		require.NotEqual(t, -1, summaryAt)

		var tail []string
		for _, line := range lines[summaryAt:] {
			tail = append(tail, line.Text)
		}
		joined := strings.Join(tail, "\n")
		assert.Contains(t, joined, "#1 Link Error: Missing Library or Function")
		assert.Contains(t, joined, "#2 Compiler Option Not Supported")
		assert.Contains(t, joined, "The toolchain does not understand this flag.")
	})

	t.Run("advice lines carry warn level", func(t *testing.T) {
		for _, line := range RenderLines(sampleReport()) {
			if strings.HasPrefix(line.Text, "Advice: ") {
				assert.Equal(t, LevelWarn, line.Level)
			}
		}
	})

	t.Run("clean report is two lines", func(t *testing.T) {
		lines := RenderLines(emptyReport())

		require.Len(t, lines, 2)
		assert.Equal(t, "No build errors found.", lines[1].Text)
		assert.Equal(t, LevelInfo, lines[1].Level)
	})

	t.Run("missing log renders a warning", func(t *testing.T) {
		report := emptyReport()
		report.LogMissing = true

		lines := RenderLines(report)

		require.Len(t, lines, 2)
		assert.Equal(t, "Build log not found, nothing to diagnose.", lines[1].Text)
		assert.Equal(t, LevelWarn, lines[1].Level)
	})
}

func TestConsoleReporter(t *testing.T) {
	t.Run("plain output without colors", func(t *testing.T) {
		var buf bytes.Buffer
		console := NewConsole(WithWriter(&buf), WithNoColor())

		require.NoError(t, console.Write(context.Background(), sampleReport()))
		require.NoError(t, console.Close())

		out := buf.String()
		assert.Contains(t, out, "Build diagnosis for build.log")
		assert.Contains(t, out, "Incidents found: 2")
		assert.NotContains(t, out, "\x1b[")
	})

	t.Run("forced colors wrap advice in yellow", func(t *testing.T) {
		var buf bytes.Buffer
		console := NewConsole(WithWriter(&buf), WithForceColor())

		require.NoError(t, console.Write(context.Background(), sampleReport()))

		assert.Contains(t, buf.String(), "\x1b[33m")
	})
}

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer
	text := NewText(&nopWriteCloser{&buf})

	require.NoError(t, text.Write(context.Background(), sampleReport()))
	require.NoError(t, text.Close())

	out := buf.String()
	assert.Contains(t, out, "Incident #1 (log line 12)")
	assert.Contains(t, out, "Advice: The toolchain does not understand this flag.")
	assert.NotContains(t, out, "\x1b[", "file output must never carry ANSI codes")
}

func TestJSONReporter(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	reporter := NewJSON(&nopWriteCloser{&buf})
	require.NoError(t, reporter.Write(context.Background(), report))
	require.NoError(t, reporter.Close())

	var decoded diagnosis.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	if diff := cmp.Diff(report, &decoded); diff != "" {
		t.Fatalf("report changed across JSON round trip (-want +got):\n%s", diff)
	}
	assert.Contains(t, buf.String(), "\n  \"", "document should be indented")
}

func TestJUnitReporter(t *testing.T) {
	t.Run("incidents become failed test cases", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewJUnit(&nopWriteCloser{&buf})

		require.NoError(t, reporter.Write(context.Background(), sampleReport()))
		require.NoError(t, reporter.Close())

		doc := etree.NewDocument()
		require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

		suite := doc.SelectElement("testsuite")
		require.NotNil(t, suite)
		assert.Equal(t, "2", suite.SelectAttrValue("tests", ""))
		assert.Equal(t, "2", suite.SelectAttrValue("failures", ""))

		cases := suite.SelectElements("testcase")
		require.Len(t, cases, 2)

		failure := cases[0].SelectElement("failure")
		require.NotNil(t, failure)
		assert.Equal(t, "Link Error: Missing Library or Function", failure.SelectAttrValue("message", ""))
		assert.Contains(t, failure.Text(), "undefined reference to")
		assert.Contains(t, failure.Text(), "Advice: ")
	})

	t.Run("clean log becomes a single passing case", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewJUnit(&nopWriteCloser{&buf})

		require.NoError(t, reporter.Write(context.Background(), emptyReport()))

		doc := etree.NewDocument()
		require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

		suite := doc.SelectElement("testsuite")
		require.NotNil(t, suite)
		assert.Equal(t, "1", suite.SelectAttrValue("tests", ""))
		assert.Equal(t, "0", suite.SelectAttrValue("failures", ""))

		cases := suite.SelectElements("testcase")
		require.Len(t, cases, 1)
		assert.Nil(t, cases[0].SelectElement("failure"))
	})

	t.Run("missing log becomes a skipped case", func(t *testing.T) {
		report := emptyReport()
		report.LogMissing = true

		var buf bytes.Buffer
		reporter := NewJUnit(&nopWriteCloser{&buf})
		require.NoError(t, reporter.Write(context.Background(), report))

		doc := etree.NewDocument()
		require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

		cases := doc.SelectElement("testsuite").SelectElements("testcase")
		require.Len(t, cases, 1)
		assert.NotNil(t, cases[0].SelectElement("skipped"))
	})
}

type failingReporter struct {
	writeErr error
	closeErr error
}

func (f *failingReporter) Write(context.Context, *diagnosis.Report) error { return f.writeErr }
func (f *failingReporter) Close() error                                   { return f.closeErr }

func TestMultiReporter(t *testing.T) {
	t.Run("later reporters still run after a failure", func(t *testing.T) {
		var buf bytes.Buffer
		broken := &failingReporter{writeErr: errors.New("disk full")}
		multi := NewMulti(broken, NewText(&nopWriteCloser{&buf}))

		err := multi.Write(context.Background(), sampleReport())

		require.Error(t, err)
		assert.ErrorContains(t, err, "disk full")
		assert.Contains(t, buf.String(), "Incidents found: 2", "healthy sink must still receive the report")
	})

	t.Run("close joins all close errors", func(t *testing.T) {
		multi := NewMulti(
			&failingReporter{closeErr: errors.New("first close failed")},
			&failingReporter{closeErr: errors.New("second close failed")},
		)

		err := multi.Close()

		require.Error(t, err)
		assert.ErrorContains(t, err, "first close failed")
		assert.ErrorContains(t, err, "second close failed")
	})

	t.Run("empty multi is a no-op", func(t *testing.T) {
		multi := NewMulti()
		assert.NoError(t, multi.Write(context.Background(), sampleReport()))
		assert.NoError(t, multi.Close())
	})
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "text", want: FormatText},
		{input: "json", want: FormatJSON},
		{input: "junit", want: FormatJUnit},
		{input: "yaml", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run("format "+tc.input, func(t *testing.T) {
			got, err := ParseFormat(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewFactory(t *testing.T) {
	t.Run("writes a json report file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")

		reporter, err := New(FormatJSON, path)
		require.NoError(t, err)
		require.NoError(t, reporter.Write(context.Background(), sampleReport()))
		require.NoError(t, reporter.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var decoded diagnosis.Report
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Len(t, decoded.Incidents, 2)
	})

	t.Run("dash path keeps stdout open", func(t *testing.T) {
		reporter, err := New(FormatText, "-")
		require.NoError(t, err)
		require.NoError(t, reporter.Close())

		// Stdout must survive the Close above.
		_, err = os.Stdout.Stat()
		require.NoError(t, err)
	})

	t.Run("unwritable path errors", func(t *testing.T) {
		_, err := New(FormatText, filepath.Join(t.TempDir(), "missing", "report.txt"))
		require.Error(t, err)
	})

	t.Run("unknown format errors", func(t *testing.T) {
		_, err := New(Format("yaml"), "-")
		require.Error(t, err)
	})
}
