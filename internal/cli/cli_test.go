package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/radial"
)

const salesCSV = `region,quarter,sales,growth
North,Q1,120,0.4
South,Q1,80,0.1
East,Q1,45,-0.2
West,Q1,,0.3
`

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() { stdout = osStdout })
	return &buf
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with an isolated cache directory.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestLayoutCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sales.csv", salesCSV)
	out := captureStdout(t)

	if err := runCLI(t, "layout", input, "--target", "100", "--threshold"); err != nil {
		t.Fatalf("layout error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sales.layout.json"))
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	var b radial.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	// West has no sales and is dropped. Quarter is not inferred as a group.
	if len(b.Arcs) != 3 {
		t.Errorf("len(Arcs) = %d, want 3", len(b.Arcs))
	}
	if b.ThresholdRing == nil {
		t.Error("ThresholdRing = nil, want ring")
	}
	for _, a := range b.Arcs {
		if a.RingIndex != 0 {
			t.Errorf("arc %d RingIndex = %d, want 0", a.RecordIndex, a.RingIndex)
		}
	}
	if !strings.Contains(out.String(), "1 dropped") {
		t.Errorf("output = %q, want dropped count", out.String())
	}
}

func TestLayoutCommandStdout(t *testing.T) {
	input := writeFile(t, t.TempDir(), "sales.csv", salesCSV)
	out := captureStdout(t)

	if err := runCLI(t, "layout", input, "-o", "-", "--category", "region,quarter", "--metric", "sales"); err != nil {
		t.Fatalf("layout error = %v", err)
	}
	var b radial.Bundle
	if err := json.Unmarshal(out.Bytes(), &b); err != nil {
		t.Fatalf("decode stdout: %v", err)
	}
	// An explicit group field stacks rings; all rows share Q1.
	if len(b.Arcs) != 3 || b.Arcs[0].RingIndex != 0 {
		t.Errorf("Arcs = %+v", b.Arcs)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "sales.csv", salesCSV)
	captureStdout(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown field", []string{"layout", input, "--metric", "profit"}, errors.ErrCodeMissingFields},
		{"bad config", []string{"layout", input, "--inner-hole", "2"}, errors.ErrCodeInvalidConfiguration},
		{"missing input", []string{"layout", filepath.Join(dir, "nope.csv")}, errors.ErrCodeFileNotFound},
		{"no metric column", []string{"layout", writeFile(t, dir, "text.csv", "a,b\nx,y\n")}, errors.ErrCodeMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("layout error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderCommandMultiple(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", salesCSV)
	b := writeFile(t, dir, "b.json", `[{"team": "Red", "score": 3}, {"team": "Blue", "score": 5}]`)
	outDir := filepath.Join(dir, "out")
	captureStdout(t)

	if err := runCLI(t, "render", a, b, "-o", outDir, "-f", "svg,json", "-j", "2"); err != nil {
		t.Fatalf("render error = %v", err)
	}

	for _, name := range []string{"a.svg", "a.json", "b.svg", "b.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}

func TestRenderCommandFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", salesCSV)
	bad := writeFile(t, dir, "bad.csv", "region,quarter,sales,growth\nNorth,Q1,,0.1\n")
	captureStdout(t)

	err := runCLI(t, "render", good, bad, "-o", filepath.Join(dir, "out"), "--metric", "sales", "--category", "region")
	if err == nil || !strings.Contains(err.Error(), "bad.csv") {
		t.Errorf("render error = %v, want failure naming bad.csv", err)
	}

	if err := runCLI(t, "render", good, "-f", "png"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("render -f png error = %v, want INVALID_FORMAT", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,json", []string{"svg", "pdf", "json"}},
		{"spaces trimmed", "svg, pdf", []string{"svg", "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/sales.csv", "data/sales"},
		{"chart.svg", "sales.csv", "chart"},
		{"chart.pdf", "sales.csv", "chart"},
		{"chart.v2", "sales.csv", "chart.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		output, input string
		inputs        int
		want          string
	}{
		{"", "data/a.csv", 2, "data/a"},
		{"out", "data/a.csv", 2, filepath.Join("out", "a")},
		{"chart.svg", "data/a.csv", 1, "chart"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.output, tt.input, tt.inputs); got != tt.want {
			t.Errorf("outputBase(%q, %q, %d) = %q, want %q", tt.output, tt.input, tt.inputs, got, tt.want)
		}
	}
}

func TestCachePathCommand(t *testing.T) {
	out := captureStdout(t)
	if err := runCLI(t, "cache", "path"); err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), appName) {
		t.Errorf("cache path = %q, want suffix %q", out.String(), appName)
	}
}
