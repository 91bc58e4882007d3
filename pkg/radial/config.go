package radial

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/radials/pkg/errors"
)

// LayoutMode selects how the angular scale divides the circle.
type LayoutMode string

const (
	LayoutEqual    LayoutMode = "equal"    // every slice spans 2π/n
	LayoutWeighted LayoutMode = "weighted" // spans proportional to a metric
)

// RadiusEncoding selects how record values map to radii.
type RadiusEncoding string

const (
	RadiusMagnitude RadiusEncoding = "magnitude" // outer radius by metricA
	RadiusUniform   RadiusEncoding = "uniform"   // every slice reaches maxRadius
	RadiusThickness RadiusEncoding = "thickness" // outer radius by metricA, thickness by metricB
)

// Ordering selects the slice order used for angles, colors and labels.
type Ordering string

const (
	OrderInput    Ordering = "input"
	OrderCategory Ordering = "category"
)

// ThresholdStyle selects how above-target slices are colored.
type ThresholdStyle string

const (
	ThresholdShade  ThresholdStyle = "shade"  // darker shade of the slice color
	ThresholdAccent ThresholdStyle = "accent" // AccentColor for every slice
)

// Defaults applied by [Config.Resolve].
const (
	DefaultMargin      = 20.0
	DefaultLabelOffset = 15.0
	DefaultAccentColor = "#4CAF50"

	// ringShrink is the share of a ring band covered by its arcs.
	ringShrink = 0.9

	// thresholdThickness is the width of the threshold ring.
	thresholdThickness = 2.0
)

// DefaultPalette is the category10 palette.
var DefaultPalette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Config holds every recognized layout option. Zero values select the
// documented default, so a host only sets what it overrides.
type Config struct {
	// TargetValue is the threshold compared against metricA (default 0).
	// It is always part of the radial domain.
	TargetValue float64 `json:"targetValue" toml:"target_value"`

	// Threshold enables the threshold ring and above-target coloring.
	Threshold bool `json:"threshold" toml:"threshold"`

	// MinRadius is the radius that metric 0 maps to (default 0).
	MinRadius float64 `json:"minRadius" toml:"min_radius"`

	// MaxRadius is the outermost data radius. Zero derives it from the
	// surface: min(width, height)/2 − Margin.
	MaxRadius float64 `json:"maxRadius" toml:"max_radius"`

	// PadAngle is the gap in radians between adjacent slices (default 0).
	PadAngle float64 `json:"padAngle" toml:"pad_angle"`

	// ColorPalette assigns colors to categories (default category10).
	ColorPalette []string `json:"colorPalette,omitempty" toml:"color_palette"`

	// InnerHoleRatio reserves a hole of InnerHoleRatio·MaxRadius, in [0,1)
	// (default 0). The larger of the hole and MinRadius wins.
	InnerHoleRatio float64 `json:"innerHoleRatio" toml:"inner_hole_ratio"`

	// LayoutMode is "equal" (default) or "weighted".
	LayoutMode LayoutMode `json:"layoutMode,omitempty" toml:"layout_mode"`

	// AngleMetric picks the weighting metric in weighted mode: 0 for
	// metricA (default), 1 for metricB.
	AngleMetric int `json:"angleMetric" toml:"angle_metric"`

	// Radius is "magnitude" (default), "uniform" or "thickness".
	Radius RadiusEncoding `json:"radius,omitempty" toml:"radius"`

	// Ordering is "input" (default) or "category".
	Ordering Ordering `json:"ordering,omitempty" toml:"ordering"`

	// ThresholdStyle is "shade" (default) or "accent".
	ThresholdStyle ThresholdStyle `json:"thresholdStyle,omitempty" toml:"threshold_style"`

	// AccentColor colors the threshold ring and, with the accent style,
	// above-target slices (default #4CAF50).
	AccentColor string `json:"accentColor,omitempty" toml:"accent_color"`

	// LabelOffset is the distance from a slice's outer radius to its label
	// anchor (default 15).
	LabelOffset float64 `json:"labelOffset" toml:"label_offset"`

	// LeaderLines draws a connector from each slice to its label.
	LeaderLines bool `json:"leaderLines" toml:"leader_lines"`

	// Margin is kept free around the chart when MaxRadius is derived
	// (default 20).
	Margin float64 `json:"margin" toml:"margin"`
}

// Size is a surface size in device-independent pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Requirements reports how many metric fields the configuration needs.
func (c Config) Requirements() Requirements {
	if c.Radius == RadiusThickness || c.AngleMetric == 1 {
		return Requirements{Metrics: 2}
	}
	return Requirements{Metrics: 1}
}

// Resolve returns a copy of c with defaults applied and MaxRadius derived
// from size, then validates the result. Errors carry the
// INVALID_CONFIGURATION code.
func (c Config) Resolve(size Size) (Config, error) {
	if !(size.Width > 0) || !(size.Height > 0) {
		return c, errors.New(errors.ErrCodeInvalidConfiguration,
			"surface size must be positive, got %gx%g", size.Width, size.Height)
	}

	if c.Margin == 0 {
		c.Margin = DefaultMargin
	}
	if c.LabelOffset == 0 {
		c.LabelOffset = DefaultLabelOffset
	}
	if c.MaxRadius == 0 {
		c.MaxRadius = math.Min(size.Width, size.Height)/2 - c.Margin
	}
	if len(c.ColorPalette) == 0 {
		c.ColorPalette = DefaultPalette
	}
	if c.AccentColor == "" {
		c.AccentColor = DefaultAccentColor
	}
	if c.LayoutMode == "" {
		c.LayoutMode = LayoutEqual
	}
	if c.Radius == "" {
		c.Radius = RadiusMagnitude
	}
	if c.Ordering == "" {
		c.Ordering = OrderInput
	}
	if c.ThresholdStyle == "" {
		c.ThresholdStyle = ThresholdShade
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks a resolved configuration.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"targetValue", c.TargetValue},
		{"minRadius", c.MinRadius},
		{"maxRadius", c.MaxRadius},
		{"padAngle", c.PadAngle},
		{"innerHoleRatio", c.InnerHoleRatio},
		{"labelOffset", c.LabelOffset},
		{"margin", c.Margin},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return invalid("%s must be finite", f.name)
		}
	}

	switch {
	case c.MaxRadius <= 0:
		return invalid("maxRadius must be positive, got %g (surface too small for margin %g?)", c.MaxRadius, c.Margin)
	case c.MinRadius < 0:
		return invalid("minRadius must not be negative, got %g", c.MinRadius)
	case c.MinRadius > c.MaxRadius:
		return invalid("minRadius %g exceeds maxRadius %g", c.MinRadius, c.MaxRadius)
	case c.PadAngle < 0:
		return invalid("padAngle must not be negative, got %g", c.PadAngle)
	case c.InnerHoleRatio < 0 || c.InnerHoleRatio >= 1:
		return invalid("innerHoleRatio must be in [0,1), got %g", c.InnerHoleRatio)
	case c.AngleMetric != 0 && c.AngleMetric != 1:
		return invalid("angleMetric must be 0 or 1, got %d", c.AngleMetric)
	}

	switch c.LayoutMode {
	case LayoutEqual, LayoutWeighted:
	default:
		return invalid("unknown layoutMode %q", c.LayoutMode)
	}
	switch c.Radius {
	case RadiusMagnitude, RadiusUniform, RadiusThickness:
	default:
		return invalid("unknown radius encoding %q", c.Radius)
	}
	switch c.Ordering {
	case OrderInput, OrderCategory:
	default:
		return invalid("unknown ordering %q", c.Ordering)
	}
	switch c.ThresholdStyle {
	case ThresholdShade, ThresholdAccent:
	default:
		return invalid("unknown thresholdStyle %q", c.ThresholdStyle)
	}

	for _, col := range append([]string{c.AccentColor}, c.ColorPalette...) {
		if err := errors.ValidateHexColor(col); err != nil {
			return err
		}
		if _, err := colorful.Hex(col); err != nil {
			return invalid("invalid color %q: %v", col, err)
		}
	}
	return nil
}

// innerRadius is the radius that metric 0 maps to.
func (c Config) innerRadius() float64 {
	return math.Max(c.MinRadius, c.InnerHoleRatio*c.MaxRadius)
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfiguration, format, args...)
}
