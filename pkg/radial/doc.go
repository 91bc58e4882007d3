// Package radial computes polar chart geometry from tabular rows.
//
// # Overview
//
// The package is a pure pipeline with no I/O. A host hands it rows keyed by
// field identifier, the roles of those fields, a [Config] and the surface
// size; it returns a [Bundle] of arc, label and threshold descriptors that a
// renderer can paint without further arithmetic.
//
//	bundle, stats, err := radial.Compute(rows, roles, cfg, radial.Size{Width: 600, Height: 600})
//
// The stages can also be run one by one:
//
//   - [Normalize]: rows to typed [Record] values, counting dropped rows
//   - [ResolveScales]: angular, radial, thickness and color scales
//   - [AssignRings] and [Layout]: one [ArcDescriptor] per record
//   - [ThresholdRing]: the full-circle target marker
//   - [PlaceLabels]: one [LabelDescriptor] per data arc
//
// # Geometry
//
// Angles are radians measured clockwise from 12 o'clock. A point at angle θ
// and radius r sits at (r·sin θ, −r·cos θ) relative to the chart center, so
// y grows downward as on a screen. See [Polar].
//
// For one ring, the data arcs partition [0, 2π): each arc's span plus its
// applied pad angle sums to exactly 2π.
//
// # Errors
//
// Failures carry codes from pkg/errors: MISSING_FIELDS, NO_VALID_DATA and
// INVALID_CONFIGURATION. Layout and label placement never fail once scales
// have been resolved.
package radial
