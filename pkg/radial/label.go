package radial

import "math"

// Point is a position relative to the chart center, y pointing down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polar converts an angle (clockwise from 12 o'clock) and radius to a point.
func Polar(angle, r float64) Point {
	return Point{X: r * math.Sin(angle), Y: -r * math.Cos(angle)}
}

// Side is the text-anchor side of a label.
type Side string

const (
	SideStart Side = "start"
	SideEnd   Side = "end"
)

// SideFor returns SideEnd when mid exceeds π and SideStart otherwise,
// including at exactly π.
func SideFor(mid float64) Side {
	if mid > math.Pi {
		return SideEnd
	}
	return SideStart
}

// LabelDescriptor is the computed placement of one slice label.
type LabelDescriptor struct {
	RecordIndex    int     `json:"recordIndex"`
	Text           string  `json:"text"`
	AnchorX        float64 `json:"anchorX"`
	AnchorY        float64 `json:"anchorY"`
	TextAnchorSide Side    `json:"textAnchorSide"`
	LeaderLineFrom *Point  `json:"leaderLineFrom,omitempty"`
	LeaderLineTo   *Point  `json:"leaderLineTo,omitempty"`
}

// LabelOptions control label placement.
type LabelOptions struct {
	Offset      float64 // distance beyond the outer radius
	LeaderLines bool
}

// PlaceLabels anchors one label per data arc at its mid-angle, Offset
// beyond the outer radius. Arcs with a negative RecordIndex are skipped.
// Labels do not avoid each other.
func PlaceLabels(arcs []ArcDescriptor, records []Record, opts LabelOptions) []LabelDescriptor {
	labels := make([]LabelDescriptor, 0, len(arcs))
	for _, a := range arcs {
		if a.RecordIndex < 0 || a.RecordIndex >= len(records) {
			continue
		}
		mid := a.MidAngle()
		anchor := Polar(mid, a.OuterRadius+opts.Offset)
		l := LabelDescriptor{
			RecordIndex:    a.RecordIndex,
			Text:           records[a.RecordIndex].Category,
			AnchorX:        anchor.X,
			AnchorY:        anchor.Y,
			TextAnchorSide: SideFor(mid),
		}
		if opts.LeaderLines {
			from := Polar(mid, a.OuterRadius)
			to := anchor
			l.LeaderLineFrom, l.LeaderLineTo = &from, &to
		}
		labels = append(labels, l)
	}
	return labels
}
