package generate

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/scatter/pkg/core/art"
)

// Placement selects how shape centers are drawn.
type Placement string

const (
	// PlacementSpread scatters shapes symmetrically around the canvas center.
	// Shapes may extend past the canvas; the viewport clips them.
	PlacementSpread Placement = "spread"

	// PlacementBounded keeps every shape fully inside the canvas.
	PlacementBounded Placement = "bounded"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultWidth           = 1200
	DefaultHeight          = 2400
	DefaultShapeCount      = 80
	DefaultMinSize         = 8
	DefaultMaxSize         = 120
	DefaultMinTextureScale = 0.5
	DefaultMaxTextureScale = 2.0
	DefaultSpread          = 1.0

	// MinSpread is the smallest accepted spread factor.
	MinSpread = 0.1

	// DecorativeRatio sizes the second pass relative to ShapeCount.
	DecorativeRatio = 0.3

	// Upper bounds applied by WithDefaults. Larger values are clamped.
	MaxShapeCount     = 10_000
	MaxDimension      = 16_384
	MaxShapeSize      = 4_096
	TextureScaleLimit = 64.0

	// idSpace bounds the numeric suffix of generated shape ids.
	idSpace = 1_000_000
)

// DefaultColors is the palette used when none is configured.
var DefaultColors = []string{
	"#1d3557",
	"#e63946",
	"#f1faee",
	"#a8dadc",
	"#457b9d",
	"#ffb703",
	"#2a9d8f",
}

// DefaultPatterns is the pattern pool used when none is configured.
var DefaultPatterns = slices.Clone(art.Patterns)

// =============================================================================
// Config
// =============================================================================

// Config controls a generation run. Zero values select defaults; see
// [Config.WithDefaults].
type Config struct {
	Width           int         `json:"width,omitempty" toml:"width,omitzero"`
	Height          int         `json:"height,omitempty" toml:"height,omitzero"`
	ShapeCount      int         `json:"shape_count,omitempty" toml:"shape_count,omitzero"`
	Seed            *uint32     `json:"seed,omitempty" toml:"seed,omitempty"`
	MinSize         int         `json:"min_size,omitempty" toml:"min_size,omitzero"`
	MaxSize         int         `json:"max_size,omitempty" toml:"max_size,omitzero"`
	MinTextureScale float64     `json:"min_texture_scale,omitempty" toml:"min_texture_scale,omitzero"`
	MaxTextureScale float64     `json:"max_texture_scale,omitempty" toml:"max_texture_scale,omitzero"`
	Spread          float64     `json:"spread,omitempty" toml:"spread,omitzero"`
	RandomRotation  *bool       `json:"random_rotation,omitempty" toml:"random_rotation,omitempty"`
	Patterns        []string    `json:"patterns,omitempty" toml:"patterns,omitempty"`
	Colors          []string    `json:"colors,omitempty" toml:"colors,omitempty"`
	Stamps          []art.Stamp `json:"stamps,omitempty" toml:"stamps,omitempty"`
	Placement       Placement   `json:"placement,omitempty" toml:"placement,omitempty"`
}

// Seed returns a pointer to v, for filling [Config.Seed].
func Seed(v uint32) *uint32 { return &v }

// Bool returns a pointer to v, for filling [Config.RandomRotation].
func Bool(v bool) *bool { return &v }

// TimeSeed derives a seed from the wall clock.
func TimeSeed() uint32 {
	return uint32(time.Now().UnixMilli())
}

// WithDefaults returns a copy of c with every unset or unusable field
// replaced by its default. It never fails: non-positive or non-finite
// numbers fall back to defaults, counts and dimensions are clamped to
// their Max* bounds, spread is clamped to [MinSpread, ∞), unknown pattern names, empty colors and stamps without a path are
// dropped. The returned config always has a seed.
//
// MinSize > MaxSize is left alone; the size draw is then undefined and the
// caller's responsibility.
func (c Config) WithDefaults() Config {
	out := c

	out.Width = min(positiveInt(c.Width, DefaultWidth), MaxDimension)
	out.Height = min(positiveInt(c.Height, DefaultHeight), MaxDimension)
	out.ShapeCount = min(positiveInt(c.ShapeCount, DefaultShapeCount), MaxShapeCount)
	out.MinSize = min(positiveInt(c.MinSize, DefaultMinSize), MaxShapeSize)
	out.MaxSize = min(positiveInt(c.MaxSize, DefaultMaxSize), MaxShapeSize)
	out.MinTextureScale = min(positiveFloat(c.MinTextureScale, DefaultMinTextureScale), TextureScaleLimit)
	out.MaxTextureScale = min(positiveFloat(c.MaxTextureScale, DefaultMaxTextureScale), TextureScaleLimit)

	out.Spread = positiveFloat(c.Spread, DefaultSpread)
	if out.Spread < MinSpread {
		out.Spread = MinSpread
	}

	if c.Seed == nil {
		out.Seed = Seed(TimeSeed())
	} else {
		out.Seed = Seed(*c.Seed)
	}
	if c.RandomRotation == nil {
		out.RandomRotation = Bool(true)
	} else {
		out.RandomRotation = Bool(*c.RandomRotation)
	}

	out.Patterns = cleanPatterns(c.Patterns)
	out.Colors = cleanColors(c.Colors)
	out.Stamps = cleanStamps(c.Stamps)

	if out.Placement != PlacementBounded {
		out.Placement = PlacementSpread
	}
	return out
}

func positiveInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func positiveFloat(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}

func cleanPatterns(in []string) []string {
	var out []string
	for _, p := range in {
		p = strings.TrimSpace(p)
		if art.IsPattern(p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultPatterns)
	}
	return out
}

func cleanColors(in []string) []string {
	var out []string
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultColors)
	}
	return out
}

func cleanStamps(in []art.Stamp) []art.Stamp {
	var out []art.Stamp
	for _, s := range in {
		if s.Valid() {
			out = append(out, s)
		}
	}
	return out
}
