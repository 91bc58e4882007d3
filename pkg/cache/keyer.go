package cache

import "github.com/matzehuels/radials/pkg/radial"

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a computed bundle by the hash of its input data
	// and the options that shape it.
	LayoutKey(dataHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered output of a bundle.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout inputs besides the data.
type LayoutKeyOpts struct {
	Config radial.Config `json:"config"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
}

// ArtifactKeyOpts are the render inputs besides the bundle.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Title    string `json:"title,omitempty"`
	NoLabels bool   `json:"no_labels,omitempty"`
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(dataHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", dataHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
