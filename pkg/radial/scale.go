package radial

import (
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/radials/pkg/errors"
)

// shadeAmount is how far the above-target shade is blended toward black in
// CIE-L*a*b* space.
const shadeAmount = 0.35

// Scales are the resolved scales for one update.
type Scales struct {
	Angular   AngularScale
	Radial    RadialScale
	Thickness ThicknessScale
	Color     ColorScale

	// Order is the placement order as indices into the records. It is
	// shared by angles, colors and labels.
	Order []int
}

// AngularScale divides the circle among records.
type AngularScale struct {
	Mode    LayoutMode
	weights []float64
}

// Partition returns the raw angular span of each listed record. The spans
// sum to 2π. Weighted mode falls back to equal spans when the weights sum
// to zero or are all equal. Negative weights count as zero.
func (s AngularScale) Partition(indices []int) []float64 {
	spans := make([]float64, len(indices))
	if len(indices) == 0 {
		return spans
	}

	if s.Mode == LayoutWeighted {
		var sum float64
		first := math.Max(s.weights[indices[0]], 0)
		equal := true
		for _, i := range indices {
			w := math.Max(s.weights[i], 0)
			sum += w
			if w != first {
				equal = false
			}
		}
		if sum > 0 && !equal {
			for k, i := range indices {
				spans[k] = 2 * math.Pi * math.Max(s.weights[i], 0) / sum
			}
			return spans
		}
	}

	span := 2 * math.Pi / float64(len(indices))
	for k := range spans {
		spans[k] = span
	}
	return spans
}

// RadialScale linearly maps [0, DomainMax] onto [RangeMin, RangeMax].
type RadialScale struct {
	DomainMax float64
	RangeMin  float64
	RangeMax  float64
}

// Map returns the radius for v. Values outside the domain are clamped, and
// an empty domain maps everything to RangeMin.
func (s RadialScale) Map(v float64) float64 {
	if s.DomainMax <= 0 {
		return s.RangeMin
	}
	t := math.Min(math.Max(v/s.DomainMax, 0), 1)
	return s.RangeMin + t*(s.RangeMax-s.RangeMin)
}

// ThicknessScale maps metricB to the fraction of a slice's radial extent
// that is filled.
type ThicknessScale struct {
	Max float64
}

// Fraction returns b/Max clamped to [0,1]. It is 1 when Max is not positive.
func (s ThicknessScale) Fraction(b float64) float64 {
	if s.Max <= 0 {
		return 1
	}
	return math.Min(math.Max(b/s.Max, 0), 1)
}

// ColorScale assigns palette colors to categories by first-seen order.
type ColorScale struct {
	palette []string
	index   map[string]int
	style   ThresholdStyle
	accent  string
}

// Color returns the base color of a category. Unknown categories get the
// first palette color.
func (s ColorScale) Color(category string) string {
	return s.palette[s.index[category]%len(s.palette)]
}

// Above returns the color for a slice at or above the target value. It
// depends only on the base color and the threshold style.
func (s ColorScale) Above(category string) string {
	if s.style == ThresholdAccent {
		return s.accent
	}
	return Shade(s.Color(category))
}

// Categories returns the categories in color assignment order.
func (s ColorScale) Categories() []string {
	out := make([]string, len(s.index))
	for c, i := range s.index {
		out[i] = c
	}
	return out
}

// Shade returns a darker variant of a hex color. Unparseable input is
// returned unchanged.
func Shade(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return c.BlendLab(colorful.Color{}, shadeAmount).Clamped().Hex()
}

// ResolveScales builds the scales for records under a resolved config.
func ResolveScales(records []Record, cfg Config) (Scales, error) {
	if len(records) == 0 {
		return Scales{}, errors.New(errors.ErrCodeNoValidData, "no records to scale")
	}
	if len(cfg.ColorPalette) == 0 {
		return Scales{}, invalid("color palette is empty")
	}

	order := placementOrder(records, cfg.Ordering)

	weights := make([]float64, len(records))
	var maxA, maxB float64
	for i, r := range records {
		weights[i] = r.MetricA
		if cfg.AngleMetric == 1 {
			weights[i] = r.MetricB
		}
		maxA = math.Max(maxA, r.MetricA)
		if r.HasMetricB {
			maxB = math.Max(maxB, r.MetricB)
		}
	}

	index := make(map[string]int)
	for _, i := range order {
		if _, ok := index[records[i].Category]; !ok {
			index[records[i].Category] = len(index)
		}
	}

	return Scales{
		Angular: AngularScale{Mode: cfg.LayoutMode, weights: weights},
		Radial: RadialScale{
			DomainMax: math.Max(maxA, cfg.TargetValue),
			RangeMin:  cfg.innerRadius(),
			RangeMax:  cfg.MaxRadius,
		},
		Thickness: ThicknessScale{Max: maxB},
		Color: ColorScale{
			palette: cfg.ColorPalette,
			index:   index,
			style:   cfg.ThresholdStyle,
			accent:  cfg.AccentColor,
		},
		Order: order,
	}, nil
}

func placementOrder(records []Record, ordering Ordering) []int {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	if ordering == OrderCategory {
		sort.SliceStable(order, func(a, b int) bool {
			return records[order[a]].Category < records[order[b]].Category
		})
	}
	return order
}
