package radial

import "fmt"

// Bundle is everything a renderer needs to draw one chart. Coordinates of
// arcs and labels are relative to (CenterX, CenterY).
type Bundle struct {
	Width         float64           `json:"width"`
	Height        float64           `json:"height"`
	CenterX       float64           `json:"centerX"`
	CenterY       float64           `json:"centerY"`
	MaxRadius     float64           `json:"maxRadius"`
	Arcs          []ArcDescriptor   `json:"arcs"`
	Labels        []LabelDescriptor `json:"labels"`
	ThresholdRing *ArcDescriptor    `json:"thresholdRing,omitempty"`
	Records       []Record          `json:"records"`
}

// Stats summarizes one pipeline run.
type Stats struct {
	Rows    int `json:"rows"`
	Records int `json:"records"`
	Dropped int `json:"dropped"`
	Rings   int `json:"rings"`
}

// TooltipContent returns the tooltip text of a record: "category: metricA",
// followed by metricB when present. ok is false for an unknown index.
func (b Bundle) TooltipContent(recordIndex int) (string, bool) {
	if recordIndex < 0 || recordIndex >= len(b.Records) {
		return "", false
	}
	r := b.Records[recordIndex]
	if r.HasMetricB {
		return fmt.Sprintf("%s: %g / %g", r.Category, r.MetricA, r.MetricB), true
	}
	return fmt.Sprintf("%s: %g", r.Category, r.MetricA), true
}

// Compute runs the whole pipeline: it resolves cfg against size, normalizes
// rows, resolves scales, lays out arcs, adds the threshold ring and places
// labels. Errors abort before any geometry is produced.
func Compute(rows []Row, roles FieldRoles, cfg Config, size Size) (Bundle, Stats, error) {
	stats := Stats{Rows: len(rows)}

	resolved, err := cfg.Resolve(size)
	if err != nil {
		return Bundle{}, stats, fmt.Errorf("config: %w", err)
	}

	records, dropped, err := Normalize(rows, roles, resolved.Requirements())
	stats.Dropped = dropped
	if err != nil {
		return Bundle{}, stats, fmt.Errorf("normalize: %w", err)
	}
	stats.Records = len(records)

	scales, err := ResolveScales(records, resolved)
	if err != nil {
		return Bundle{}, stats, fmt.Errorf("scales: %w", err)
	}

	rings := AssignRings(records, scales.Order)
	stats.Rings = rings.Count
	arcs := Layout(records, scales, resolved, rings)
	labels := PlaceLabels(arcs, records, LabelOptions{
		Offset:      resolved.LabelOffset,
		LeaderLines: resolved.LeaderLines,
	})

	return Bundle{
		Width:         size.Width,
		Height:        size.Height,
		CenterX:       size.Width / 2,
		CenterY:       size.Height / 2,
		MaxRadius:     resolved.MaxRadius,
		Arcs:          arcs,
		Labels:        labels,
		ThresholdRing: ThresholdRing(scales, resolved),
		Records:       records,
	}, stats, nil
}
