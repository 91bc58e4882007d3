package pipeline

import (
	"fmt"

	"github.com/matzehuels/radials/pkg/radial"
	"github.com/matzehuels/radials/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(b radial.Bundle, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = render.RenderSVG(b, svgOptions(opts)...)
		case FormatPDF:
			data, err = render.RenderPDF(b, pdfOptions(opts)...)
		case FormatJSON:
			data, err = render.RenderJSON(b)
		default:
			err = ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(opts Options) []render.SVGOption {
	var out []render.SVGOption
	if opts.Title != "" {
		out = append(out, render.WithTitle(opts.Title))
	}
	if opts.NoLabels {
		out = append(out, render.WithoutLabels())
	}
	return out
}

func pdfOptions(opts Options) []render.PDFOption {
	var out []render.PDFOption
	if opts.Title != "" {
		out = append(out, render.WithPDFTitle(opts.Title))
	}
	if opts.NoLabels {
		out = append(out, render.WithoutPDFLabels())
	}
	return out
}
