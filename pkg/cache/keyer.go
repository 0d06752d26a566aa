package cache

import (
	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/generate"
)

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs always give equal keys.
type Keyer interface {
	// CompositionKey keys a generated composition by its inputs.
	CompositionKey(opts CompositionKeyOpts) string

	// ArtifactKey keys a rendered artifact by composition hash and format.
	ArtifactKey(compositionHash string, opts ArtifactKeyOpts) string
}

// CompositionKeyOpts are the inputs that determine a composition. Config
// must be normalized (WithDefaults) so that equivalent configs share a key.
type CompositionKeyOpts struct {
	Config     generate.Config `json:"config"`
	Background *art.Background `json:"background,omitempty"`
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Native bool    `json:"native,omitempty"`
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CompositionKey returns "composition:<hash>".
func (DefaultKeyer) CompositionKey(opts CompositionKeyOpts) string {
	return hashKey("composition", opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(compositionHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", compositionHash, opts)
}
