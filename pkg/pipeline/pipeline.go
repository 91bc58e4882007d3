// Package pipeline runs the normalize → layout → render pipeline for the
// CLI and the HTTP server.
//
// The pure layout lives in [radial.Compute]. This package adds what the
// non-interactive entry points share: defaults for surface size and output
// formats, layout memoization through a [cache.Cache], rendering to SVG,
// PDF and JSON, and observability hooks around each stage.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Rows:    table.Rows,
//	    Roles:   radial.FieldRoles{Categories: []string{"team"}, Metrics: []string{"score"}},
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/radials/pkg/cache"
	"github.com/matzehuels/radials/pkg/errors"
	"github.com/matzehuels/radials/pkg/radial"
)

const (
	// DefaultWidth is the default surface width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default surface height in pixels.
	DefaultHeight = 600.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Rows   []radial.Row      `json:"rows"`
	Roles  radial.FieldRoles `json:"fieldRoles"`
	Config radial.Config     `json:"config"`

	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Title    string   `json:"title,omitempty"`
	NoLabels bool     `json:"noLabels,omitempty"`

	// Refresh skips cache lookups; results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Bundle is the computed descriptor bundle.
	Bundle radial.Bundle

	// LayoutHash is the content hash of the bundle, usable as an ETag.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	radial.Stats
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the bundle came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Roles.Categories) == 0 || len(o.Roles.Metrics) == 0 {
		return errors.New(errors.ErrCodeMissingFields,
			"at least one category field and one metric field are required")
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration,
			"surface size %gx%g must be positive", o.Width, o.Height)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering. Duplicate formats
// are removed, keeping the first occurrence.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	var uniq []string
	for _, f := range o.Formats {
		if !slices.Contains(uniq, f) {
			uniq = append(uniq, f)
		}
	}
	o.Formats = uniq
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Size returns the surface size.
func (o *Options) Size() radial.Size {
	return radial.Size{Width: o.Width, Height: o.Height}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Config: o.Config,
		Width:  o.Width,
		Height: o.Height,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Title:    o.Title,
		NoLabels: o.NoLabels,
	}
}

// dataHash identifies the layout input independent of options.
func (o *Options) dataHash() (string, error) {
	h, err := cache.HashJSON(struct {
		Rows  []radial.Row      `json:"rows"`
		Roles radial.FieldRoles `json:"roles"`
	}{o.Rows, o.Roles})
	if err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	return h, nil
}
