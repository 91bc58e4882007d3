package cli

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/radials/pkg/dataset"
	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/radial"
)

// fileConfig is the layout of a --config TOML file:
//
//	[fields]
//	categories = ["region", "quarter"]
//	metrics = ["sales"]
//
//	[layout]
//	target_value = 75
//	threshold = true
//	radius = "magnitude"
type fileConfig struct {
	Fields struct {
		Categories []string `toml:"categories"`
		Metrics    []string `toml:"metrics"`
	} `toml:"fields"`
	Layout radial.Config `toml:"layout"`
}

// loadConfigFile decodes a TOML config file. Unknown keys are rejected so
// typos do not silently fall back to defaults.
func loadConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	if _, err := os.Stat(path); err != nil {
		return fc, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fc, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fc, errors.New(errors.ErrCodeInvalidConfiguration,
			"%s: unknown key %q", path, undecoded[0].String())
	}
	return fc, nil
}

// chartFlags are the flags shared by every command that lays out a chart.
// Flags override values from the config file only when set explicitly.
type chartFlags struct {
	configFile string
	categories []string
	metrics    []string
	cfg        radial.Config
}

func (f *chartFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "TOML config file with [fields] and [layout] tables")
	fl.StringSliceVar(&f.categories, "category", nil, "category field(s): primary, then group (default: inferred)")
	fl.StringSliceVar(&f.metrics, "metric", nil, "metric field(s): primary, then secondary (default: inferred)")

	fl.Float64Var(&f.cfg.TargetValue, "target", 0, "threshold value compared against the primary metric")
	fl.BoolVar(&f.cfg.Threshold, "threshold", false, "draw the threshold ring and highlight slices at or above target")
	fl.Float64Var(&f.cfg.MinRadius, "min-radius", 0, "radius of metric value 0")
	fl.Float64Var(&f.cfg.MaxRadius, "max-radius", 0, "outer data radius (default: derived from size)")
	fl.Float64Var(&f.cfg.PadAngle, "pad-angle", 0, "gap between slices in radians")
	fl.Float64Var(&f.cfg.InnerHoleRatio, "inner-hole", 0, "inner hole as a fraction of max radius, in [0,1)")
	fl.StringSliceVar(&f.cfg.ColorPalette, "palette", nil, "category colors as hex (default: category10)")
	fl.StringVar((*string)(&f.cfg.LayoutMode), "mode", "", "angular layout: equal (default), weighted")
	fl.IntVar(&f.cfg.AngleMetric, "angle-metric", 0, "metric weighting angles in weighted mode: 0 or 1")
	fl.StringVar((*string)(&f.cfg.Radius), "radius", "", "radius encoding: magnitude (default), uniform, thickness")
	fl.StringVar((*string)(&f.cfg.Ordering), "order", "", "slice order: input (default), category")
	fl.StringVar((*string)(&f.cfg.ThresholdStyle), "threshold-style", "", "above-target color: shade (default), accent")
	fl.StringVar(&f.cfg.AccentColor, "accent", "", "threshold ring color (default #4CAF50)")
	fl.Float64Var(&f.cfg.LabelOffset, "label-offset", 0, "distance from slice to label (default 15)")
	fl.BoolVar(&f.cfg.LeaderLines, "leaders", false, "draw leader lines from slices to labels")
	fl.Float64Var(&f.cfg.Margin, "margin", 0, "margin kept free when deriving max radius (default 20)")
}

// layoutFlags maps flag names to the config field they set.
var layoutFlags = map[string]func(dst, src *radial.Config){
	"target":          func(d, s *radial.Config) { d.TargetValue = s.TargetValue },
	"threshold":       func(d, s *radial.Config) { d.Threshold = s.Threshold },
	"min-radius":      func(d, s *radial.Config) { d.MinRadius = s.MinRadius },
	"max-radius":      func(d, s *radial.Config) { d.MaxRadius = s.MaxRadius },
	"pad-angle":       func(d, s *radial.Config) { d.PadAngle = s.PadAngle },
	"inner-hole":      func(d, s *radial.Config) { d.InnerHoleRatio = s.InnerHoleRatio },
	"palette":         func(d, s *radial.Config) { d.ColorPalette = s.ColorPalette },
	"mode":            func(d, s *radial.Config) { d.LayoutMode = s.LayoutMode },
	"angle-metric":    func(d, s *radial.Config) { d.AngleMetric = s.AngleMetric },
	"radius":          func(d, s *radial.Config) { d.Radius = s.Radius },
	"order":           func(d, s *radial.Config) { d.Ordering = s.Ordering },
	"threshold-style": func(d, s *radial.Config) { d.ThresholdStyle = s.ThresholdStyle },
	"accent":          func(d, s *radial.Config) { d.AccentColor = s.AccentColor },
	"label-offset":    func(d, s *radial.Config) { d.LabelOffset = s.LabelOffset },
	"leaders":         func(d, s *radial.Config) { d.LeaderLines = s.LeaderLines },
	"margin":          func(d, s *radial.Config) { d.Margin = s.Margin },
}

// resolve merges the config file and explicitly set flags.
func (f *chartFlags) resolve(cmd *cobra.Command) (radial.Config, radial.FieldRoles, error) {
	var (
		cfg   radial.Config
		roles radial.FieldRoles
	)
	if f.configFile != "" {
		fc, err := loadConfigFile(f.configFile)
		if err != nil {
			return cfg, roles, err
		}
		cfg = fc.Layout
		roles = radial.FieldRoles{Categories: fc.Fields.Categories, Metrics: fc.Fields.Metrics}
	}

	for name, apply := range layoutFlags {
		if cmd.Flags().Changed(name) {
			apply(&cfg, &f.cfg)
		}
	}
	if cmd.Flags().Changed("category") {
		roles.Categories = f.categories
	}
	if cmd.Flags().Changed("metric") {
		roles.Metrics = f.metrics
	}
	return cfg, roles, nil
}

// loadChart reads a data file and settles the field roles: explicit roles
// are checked against the table, missing ones are inferred. Inference never
// picks a grouping field and at most two metrics.
func (f *chartFlags) loadChart(cmd *cobra.Command, path string) (*dataset.Table, radial.FieldRoles, radial.Config, error) {
	cfg, roles, err := f.resolve(cmd)
	if err != nil {
		return nil, roles, cfg, err
	}
	tbl, err := dataset.ReadFile(path)
	if err != nil {
		return nil, roles, cfg, err
	}

	inferred := dataset.InferRoles(tbl)
	if len(roles.Categories) == 0 {
		roles.Categories = inferred.Categories[:min(1, len(inferred.Categories))]
	}
	if len(roles.Metrics) == 0 {
		roles.Metrics = inferred.Metrics[:min(2, len(inferred.Metrics))]
	}
	roles, err = tbl.Select(roles.Categories, roles.Metrics)
	if err != nil {
		return nil, roles, cfg, err
	}
	return tbl, roles, cfg, nil
}
