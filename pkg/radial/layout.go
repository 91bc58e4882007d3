package radial

import "math"

// ArcDescriptor is the computed geometry of one slice, or of the threshold
// ring when RecordIndex is -1. Angles are in radians clockwise from
// 12 o'clock; StartAngle and EndAngle already exclude the applied pad.
type ArcDescriptor struct {
	RecordIndex    int     `json:"recordIndex"`
	StartAngle     float64 `json:"startAngle"`
	EndAngle       float64 `json:"endAngle"`
	InnerRadius    float64 `json:"innerRadius"`
	OuterRadius    float64 `json:"outerRadius"`
	RingIndex      int     `json:"ringIndex"`
	AboveThreshold bool    `json:"aboveThreshold"`
	PadAngle       float64 `json:"padAngle"`
	Fill           string  `json:"fill"`
}

// Span returns the drawn angular extent of the arc.
func (a ArcDescriptor) Span() float64 { return a.EndAngle - a.StartAngle }

// MidAngle returns the angle halfway between start and end.
func (a ArcDescriptor) MidAngle() float64 { return (a.StartAngle + a.EndAngle) / 2 }

// Centroid returns the point at the mid-angle halfway between the radii.
func (a ArcDescriptor) Centroid() Point {
	return Polar(a.MidAngle(), (a.InnerRadius+a.OuterRadius)/2)
}

// RingAssignment maps each record to a concentric ring.
type RingAssignment struct {
	Index   []int // ring of each record, by record index
	Count   int
	Stacked bool // true when records carry groups
}

// AssignRings gives every distinct group its own ring, numbered by first
// appearance in placement order. Records without groups share ring 0.
func AssignRings(records []Record, order []int) RingAssignment {
	ra := RingAssignment{Index: make([]int, len(records)), Count: 1}
	for _, r := range records {
		if r.Group != "" {
			ra.Stacked = true
			break
		}
	}
	if !ra.Stacked {
		return ra
	}

	rings := make(map[string]int)
	for _, i := range order {
		g := records[i].Group
		k, ok := rings[g]
		if !ok {
			k = len(rings)
			rings[g] = k
		}
		ra.Index[i] = k
	}
	ra.Count = len(rings)
	return ra
}

// Layout emits one arc per record, ring by ring, in placement order.
//
// Within a ring the raw spans partition [0, 2π) and the last arc ends at
// exactly 2π; rounding never pushes a start past 2π. Each arc is inset
// symmetrically by its pad, which is clamped to [0, span/2] so EndAngle
// never precedes StartAngle.
func Layout(records []Record, scales Scales, cfg Config, rings RingAssignment) []ArcDescriptor {
	members := make([][]int, rings.Count)
	for _, i := range scales.Order {
		k := rings.Index[i]
		members[k] = append(members[k], i)
	}

	arcs := make([]ArcDescriptor, 0, len(records))
	for k, idx := range members {
		spans := scales.Angular.Partition(idx)
		cursor := 0.0
		for j, i := range idx {
			start := math.Min(cursor, 2*math.Pi)
			end := cursor + spans[j]
			if j == len(idx)-1 {
				end = 2 * math.Pi
			}
			end = math.Max(end, start)
			cursor = end

			rec := records[i]
			pad := math.Max(0, math.Min(cfg.PadAngle, (end-start)/2))
			inner, outer := arcRadii(rec, scales, cfg, rings, k)
			above := cfg.Threshold && rec.MetricA >= cfg.TargetValue
			fill := scales.Color.Color(rec.Category)
			if above {
				fill = scales.Color.Above(rec.Category)
			}

			arcs = append(arcs, ArcDescriptor{
				RecordIndex:    i,
				StartAngle:     start + pad/2,
				EndAngle:       end - pad/2,
				InnerRadius:    inner,
				OuterRadius:    outer,
				RingIndex:      k,
				AboveThreshold: above,
				PadAngle:       pad,
				Fill:           fill,
			})
		}
	}
	return arcs
}

// arcRadii returns the radii of one record. Stacked rings use fixed bands:
// [0, MaxRadius] is split into Count+1 bands, the innermost left as a hole,
// and each ring covers ringShrink of its band.
func arcRadii(rec Record, scales Scales, cfg Config, rings RingAssignment, ring int) (inner, outer float64) {
	if rings.Stacked {
		band := cfg.MaxRadius / float64(rings.Count+1)
		inner = float64(ring+1) * band
		return inner, inner + ringShrink*band
	}

	r0 := scales.Radial.RangeMin
	switch cfg.Radius {
	case RadiusUniform:
		return r0, cfg.MaxRadius
	case RadiusThickness:
		outer = scales.Radial.Map(rec.MetricA)
		frac := 1.0
		if rec.HasMetricB {
			frac = scales.Thickness.Fraction(rec.MetricB)
		}
		return outer - frac*(outer-r0), outer
	default:
		return r0, scales.Radial.Map(rec.MetricA)
	}
}

// ThresholdRing returns the full-circle marker at the target radius, or nil
// when the threshold is disabled. It is meant to be drawn after the data
// arcs.
func ThresholdRing(scales Scales, cfg Config) *ArcDescriptor {
	if !cfg.Threshold {
		return nil
	}
	r := scales.Radial.Map(cfg.TargetValue)
	half := thresholdThickness / 2
	return &ArcDescriptor{
		RecordIndex: -1,
		StartAngle:  0,
		EndAngle:    2 * math.Pi,
		InnerRadius: math.Max(r-half, 0),
		OuterRadius: math.Min(r+half, cfg.MaxRadius),
		RingIndex:   -1,
		Fill:        cfg.AccentColor,
	}
}
