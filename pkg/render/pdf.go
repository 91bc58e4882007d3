package render

import (
	"bytes"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/radial"
)

// arcStep is the largest angle between two sampled points of a curved edge.
const arcStep = math.Pi / 90

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	fontSize float64
	labels   bool
	title    string
}

// WithFontSize sets the label font size in points (default 9).
func WithFontSize(pt float64) PDFOption { return func(r *pdfRenderer) { r.fontSize = pt } }

// WithPDFTitle sets the document title metadata.
func WithPDFTitle(s string) PDFOption { return func(r *pdfRenderer) { r.title = s } }

// WithoutPDFLabels omits labels and leader lines.
func WithoutPDFLabels() PDFOption { return func(r *pdfRenderer) { r.labels = false } }

// RenderPDF renders b on a single page the size of the bundle surface, one
// point per pixel. Arcs are filled polygons sampled every half degree.
func RenderPDF(b radial.Bundle, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{fontSize: 9, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	if !(b.Width > 0) || !(b.Height > 0) {
		return nil, errors.New(errors.ErrCodeRenderFailed, "pdf: empty surface %gx%g", b.Width, b.Height)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: b.Width, Ht: b.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("radials", true)
	if r.title != "" {
		pdf.SetTitle(r.title, true)
	}
	pdf.AddPage()

	cx, cy := b.CenterX, b.CenterY
	for _, a := range b.Arcs {
		fillArc(pdf, a, cx, cy)
	}
	if t := b.ThresholdRing; t != nil {
		fillArc(pdf, *t, cx, cy)
	}

	if r.labels {
		drawLabels(pdf, b.Labels, cx, cy, r.fontSize)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "pdf output")
	}
	return buf.Bytes(), nil
}

func fillArc(pdf *fpdf.Fpdf, a radial.ArcDescriptor, cx, cy float64) {
	span := a.Span()
	r0, r1 := math.Max(a.InnerRadius, 0), a.OuterRadius
	if span <= 0 || r1 <= r0 {
		return
	}

	rr, gg, bb := rgb(a.Fill)
	pdf.SetFillColor(rr, gg, bb)

	n := int(math.Ceil(span/arcStep)) + 1
	pts := make([]fpdf.PointType, 0, 2*n+1)
	for i := 0; i < n; i++ {
		p := radial.Polar(a.StartAngle+span*float64(i)/float64(n-1), r1)
		pts = append(pts, fpdf.PointType{X: cx + p.X, Y: cy + p.Y})
	}
	if r0 > 0 {
		for i := n - 1; i >= 0; i-- {
			p := radial.Polar(a.StartAngle+span*float64(i)/float64(n-1), r0)
			pts = append(pts, fpdf.PointType{X: cx + p.X, Y: cy + p.Y})
		}
	} else {
		pts = append(pts, fpdf.PointType{X: cx, Y: cy})
	}
	pdf.Polygon(pts, "F")
}

func drawLabels(pdf *fpdf.Fpdf, labels []radial.LabelDescriptor, cx, cy, size float64) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetDrawColor(153, 153, 153)
	pdf.SetLineWidth(0.75)
	for _, l := range labels {
		if l.LeaderLineFrom != nil && l.LeaderLineTo != nil {
			pdf.Line(cx+l.LeaderLineFrom.X, cy+l.LeaderLineFrom.Y, cx+l.LeaderLineTo.X, cy+l.LeaderLineTo.Y)
		}
	}

	pdf.SetFont("Helvetica", "", size)
	pdf.SetTextColor(51, 51, 51)
	for _, l := range labels {
		text := tr(l.Text)
		x := cx + l.AnchorX
		if l.TextAnchorSide == radial.SideEnd {
			x -= pdf.GetStringWidth(text)
		}
		// Baseline offset approximating dominant-baseline="middle".
		pdf.Text(x, cy+l.AnchorY+size/3, text)
	}
}

func rgb(hex string) (int, int, int) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 128, 128, 128
	}
	r, g, b := c.RGB255()
	return int(r), int(g), int(b)
}
