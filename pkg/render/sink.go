package render

import (
	"sync"

	"github.com/matzehuels/radials/pkg/radial"
	"github.com/matzehuels/radials/pkg/widget"
)

// SVGSink is a widget.Renderer that keeps the SVG of the latest bundle.
// Its accessors may be called from other goroutines than the widget's loop.
type SVGSink struct {
	mu      sync.Mutex
	opts    []SVGOption
	bundle  *radial.Bundle
	svg     []byte
	renders int
}

// NewSVGSink creates a sink rendering with opts.
func NewSVGSink(opts ...SVGOption) *SVGSink {
	return &SVGSink{opts: opts}
}

// Render implements widget.Renderer.
func (s *SVGSink) Render(b radial.Bundle) error {
	svg := RenderSVG(b, s.opts...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle, s.svg = &b, svg
	s.renders++
	return nil
}

// Clear implements widget.Renderer.
func (s *SVGSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle, s.svg = nil, nil
}

// Bytes returns the latest SVG, or nil after Clear.
func (s *SVGSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svg
}

// Renders returns how many bundles have been rendered.
func (s *SVGSink) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Snapshot re-renders the latest bundle with the given tooltip overlay.
func (s *SVGSink) Snapshot(t widget.TooltipViewState) []byte {
	s.mu.Lock()
	b := s.bundle
	s.mu.Unlock()
	if b == nil {
		return nil
	}
	opts := append(append([]SVGOption{}, s.opts...), WithTooltip(t))
	return RenderSVG(*b, opts...)
}

var _ widget.Renderer = (*SVGSink)(nil)
