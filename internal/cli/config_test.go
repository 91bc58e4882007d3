package cli

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/radial"
)

const chartTOML = `
[fields]
categories = ["region"]
metrics = ["sales", "growth"]

[layout]
target_value = 100
threshold = true
radius = "uniform"
color_palette = ["#111111", "#222222"]
label_offset = 25
`

func parseChartFlags(t *testing.T, args ...string) (*cobra.Command, *chartFlags) {
	t.Helper()
	var f chartFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error = %v", args, err)
	}
	return cmd, &f
}

func TestChartFlagsResolve(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chart.toml", chartTOML)

	cmd, f := parseChartFlags(t, "--config", path, "--radius", "thickness", "--metric", "sales", "--leaders")
	cfg, roles, err := f.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	if cfg.Radius != radial.RadiusThickness {
		t.Errorf("Radius = %q, want flag override %q", cfg.Radius, radial.RadiusThickness)
	}
	if cfg.TargetValue != 100 || !cfg.Threshold {
		t.Errorf("TargetValue, Threshold = %g, %v, want 100, true", cfg.TargetValue, cfg.Threshold)
	}
	if len(cfg.ColorPalette) != 2 || cfg.ColorPalette[1] != "#222222" {
		t.Errorf("ColorPalette = %v", cfg.ColorPalette)
	}
	if cfg.LabelOffset != 25 {
		t.Errorf("LabelOffset = %g, want 25", cfg.LabelOffset)
	}
	if !cfg.LeaderLines {
		t.Error("LeaderLines = false, want flag value true")
	}
	if len(roles.Categories) != 1 || roles.Categories[0] != "region" {
		t.Errorf("Categories = %v, want [region]", roles.Categories)
	}
	if len(roles.Metrics) != 1 || roles.Metrics[0] != "sales" {
		t.Errorf("Metrics = %v, want flag override [sales]", roles.Metrics)
	}
}

func TestChartFlagsUnsetKeepFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "chart.toml", chartTOML)

	// A flag left at its zero default must not clear the file value.
	cmd, f := parseChartFlags(t, "--config", path)
	cfg, _, err := f.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if cfg.Radius != radial.RadiusUniform || !cfg.Threshold {
		t.Errorf("cfg = %+v, want file values", cfg)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", filepath.Join(dir, "nope.toml"), errors.ErrCodeFileNotFound},
		{"unknown key", writeFile(t, dir, "typo.toml", "[layout]\ntarget = 5\n"), errors.ErrCodeInvalidConfiguration},
		{"syntax", writeFile(t, dir, "bad.toml", "[layout\n"), errors.ErrCodeInvalidConfiguration},
		{"wrong type", writeFile(t, dir, "type.toml", "[layout]\nthreshold = \"yes\"\n"), errors.ErrCodeInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfigFile(tt.path); !errors.Is(err, tt.code) {
				t.Errorf("loadConfigFile() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadChartInference(t *testing.T) {
	input := writeFile(t, t.TempDir(), "sales.csv", salesCSV)

	cmd, f := parseChartFlags(t)
	tbl, roles, _, err := f.loadChart(cmd, input)
	if err != nil {
		t.Fatalf("loadChart() error = %v", err)
	}
	if len(tbl.Rows) != 4 {
		t.Errorf("len(Rows) = %d, want 4", len(tbl.Rows))
	}
	if len(roles.Categories) != 1 || roles.Categories[0] != "region" {
		t.Errorf("Categories = %v, want [region]", roles.Categories)
	}
	if len(roles.Metrics) != 2 || roles.Metrics[0] != "sales" || roles.Metrics[1] != "growth" {
		t.Errorf("Metrics = %v, want [sales growth]", roles.Metrics)
	}
}
