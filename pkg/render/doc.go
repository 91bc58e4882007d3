// Package render paints radial layout bundles.
//
// # Overview
//
// The layout engine in pkg/radial produces descriptors only. This package
// turns a [radial.Bundle] into output files and provides renderers a
// [widget.Widget] can draw through:
//
//   - [RenderSVG]: standalone SVG with hover highlighting
//   - [RenderPDF]: single-page PDF sized to the surface
//   - [RenderJSON]: the bundle itself, indented
//   - [SVGSink]: a [widget.Renderer] keeping the latest SVG
//
// Arcs are drawn in bundle order, the threshold ring after them, then
// labels, then the tooltip overlay when one is visible.
//
//	svg := render.RenderSVG(bundle, render.WithTooltip(w.Tooltip()))
//	pdf, err := render.RenderPDF(bundle)
package render
