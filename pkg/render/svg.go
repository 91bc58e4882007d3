package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/radials/pkg/radial"
	"github.com/matzehuels/radials/pkg/widget"
)

const sliceInteractionCSS = `
    .slice { transition: opacity 0.15s ease; }
    .slices:hover .slice { opacity: 0.55; }
    .slices:hover .slice:hover { opacity: 1; }
    .label { font: 11px sans-serif; fill: #333; }
    .leader { stroke: #999; stroke-width: 0.75; fill: none; }
    .tooltip rect { fill: #fff; stroke: #666; rx: 3; }
    .tooltip text { font: 12px sans-serif; fill: #222; }`

// tooltipLift is how far above the pointer the tooltip box sits.
const tooltipLift = 28.0

// fullCircle is the span from which an arc is drawn as a closed ring.
const fullCircle = 2*math.Pi - 1e-9

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	tooltip  widget.TooltipViewState
	idPrefix string
	title    string
	labels   bool
}

// WithTooltip draws the tooltip overlay when the state is visible.
func WithTooltip(t widget.TooltipViewState) SVGOption {
	return func(r *svgRenderer) { r.tooltip = t }
}

// WithIDPrefix prefixes element ids, for embedding several charts in one
// page.
func WithIDPrefix(p string) SVGOption { return func(r *svgRenderer) { r.idPrefix = p } }

// WithTitle adds a <title> element.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// WithoutLabels omits labels and leader lines.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{labels: true, idPrefix: "slice-"}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders b as a standalone SVG document.
func RenderSVG(b radial.Bundle, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		b.Width, b.Height, b.Width, b.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(r.title))
	}
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", sliceInteractionCSS)
	fmt.Fprintf(&buf, `  <g transform="translate(%.2f,%.2f)">`+"\n", b.CenterX, b.CenterY)

	buf.WriteString("    <g class=\"slices\">\n")
	for _, a := range b.Arcs {
		d := arcPath(a)
		if d == "" {
			continue
		}
		fmt.Fprintf(&buf, `      <path id="%s%d" class="slice" d="%s" fill="%s" fill-rule="evenodd" data-record="%d" data-ring="%d"`,
			r.idPrefix, a.RecordIndex, d, a.Fill, a.RecordIndex, a.RingIndex)
		if a.AboveThreshold {
			buf.WriteString(` data-above="true"`)
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("    </g>\n")

	if t := b.ThresholdRing; t != nil {
		if d := arcPath(*t); d != "" {
			fmt.Fprintf(&buf, `    <path class="threshold" d="%s" fill="%s" fill-rule="evenodd"/>`+"\n", d, t.Fill)
		}
	}

	if r.labels {
		renderLabels(&buf, b.Labels)
	}
	buf.WriteString("  </g>\n")

	if r.tooltip.Visible {
		renderTooltip(&buf, r.tooltip)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLabels(buf *bytes.Buffer, labels []radial.LabelDescriptor) {
	for _, l := range labels {
		if l.LeaderLineFrom != nil && l.LeaderLineTo != nil {
			fmt.Fprintf(buf, `    <line class="leader" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
				l.LeaderLineFrom.X, l.LeaderLineFrom.Y, l.LeaderLineTo.X, l.LeaderLineTo.Y)
		}
	}
	for _, l := range labels {
		fmt.Fprintf(buf, `    <text class="label" x="%.2f" y="%.2f" text-anchor="%s" dominant-baseline="middle" data-record="%d">%s</text>`+"\n",
			l.AnchorX, l.AnchorY, l.TextAnchorSide, l.RecordIndex, escape(l.Text))
	}
}

// renderTooltip draws the tooltip box above the pointer, in surface
// coordinates.
func renderTooltip(buf *bytes.Buffer, t widget.TooltipViewState) {
	w := 7.0*float64(len([]rune(t.Content))) + 16
	x, y := t.ScreenX-w/2, t.ScreenY-tooltipLift
	fmt.Fprintf(buf, `  <g class="tooltip" data-record="%d">`+"\n", t.RecordIndex)
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="20"/>`+"\n", x, y-10, w)
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		t.ScreenX, y, escape(t.Content))
	buf.WriteString("  </g>\n")
}

// arcPath returns the SVG path of an annular sector centered on the origin,
// or "" when the arc has no area.
func arcPath(a radial.ArcDescriptor) string {
	span := a.Span()
	r0, r1 := math.Max(a.InnerRadius, 0), a.OuterRadius
	if span <= 0 || r1 <= r0 {
		return ""
	}

	if span >= fullCircle {
		d := ringPath(r1, 1)
		if r0 > 0 {
			d += " " + ringPath(r0, 0)
		}
		return d
	}

	large := 0
	if span > math.Pi {
		large = 1
	}
	o0, o1 := radial.Polar(a.StartAngle, r1), radial.Polar(a.EndAngle, r1)
	d := fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f", o0.X, o0.Y, r1, r1, large, o1.X, o1.Y)
	if r0 > 0 {
		i1, i0 := radial.Polar(a.EndAngle, r0), radial.Polar(a.StartAngle, r0)
		d += fmt.Sprintf(" L%.2f,%.2f A%.2f,%.2f 0 %d 0 %.2f,%.2f Z", i1.X, i1.Y, r0, r0, large, i0.X, i0.Y)
	} else {
		d += " L0,0 Z"
	}
	return d
}

// ringPath is a closed circle of radius r drawn as two half arcs.
func ringPath(r float64, sweep int) string {
	return fmt.Sprintf("M0,%.2f A%.2f,%.2f 0 1 %d 0,%.2f A%.2f,%.2f 0 1 %d 0,%.2f Z",
		-r, r, r, sweep, r, r, r, sweep, -r)
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
