package generate

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/scatter/pkg/core/art"
)

func TestWithDefaults(t *testing.T) {
	c := Config{}.WithDefaults()

	if c.Width != DefaultWidth || c.Height != DefaultHeight {
		t.Errorf("canvas = %dx%d, want %dx%d", c.Width, c.Height, DefaultWidth, DefaultHeight)
	}
	if c.ShapeCount != DefaultShapeCount {
		t.Errorf("ShapeCount = %d, want %d", c.ShapeCount, DefaultShapeCount)
	}
	if c.MinSize != DefaultMinSize || c.MaxSize != DefaultMaxSize {
		t.Errorf("size range = [%d, %d]", c.MinSize, c.MaxSize)
	}
	if c.MinTextureScale != DefaultMinTextureScale || c.MaxTextureScale != DefaultMaxTextureScale {
		t.Errorf("texture range = [%v, %v]", c.MinTextureScale, c.MaxTextureScale)
	}
	if c.Spread != DefaultSpread {
		t.Errorf("Spread = %v, want %v", c.Spread, DefaultSpread)
	}
	if c.Seed == nil {
		t.Error("Seed should be resolved")
	}
	if c.RandomRotation == nil || !*c.RandomRotation {
		t.Error("RandomRotation should default to true")
	}
	if !slices.Equal(c.Colors, DefaultColors) {
		t.Errorf("Colors = %v", c.Colors)
	}
	if !slices.Equal(c.Patterns, DefaultPatterns) {
		t.Errorf("Patterns = %v", c.Patterns)
	}
	if c.Placement != PlacementSpread {
		t.Errorf("Placement = %q, want spread", c.Placement)
	}
}

func TestWithDefaultsClamps(t *testing.T) {
	tests := []struct {
		name  string
		in    Config
		check func(t *testing.T, c Config)
	}{
		{
			name: "spread floor",
			in:   Config{Spread: 0.01},
			check: func(t *testing.T, c Config) {
				if c.Spread != MinSpread {
					t.Errorf("Spread = %v, want %v", c.Spread, MinSpread)
				}
			},
		},
		{
			name: "non-finite texture scale",
			in:   Config{MinTextureScale: math.NaN(), MaxTextureScale: math.Inf(1)},
			check: func(t *testing.T, c Config) {
				if c.MinTextureScale != DefaultMinTextureScale || c.MaxTextureScale != DefaultMaxTextureScale {
					t.Errorf("texture range = [%v, %v]", c.MinTextureScale, c.MaxTextureScale)
				}
			},
		},
		{
			name: "negative canvas",
			in:   Config{Width: -5, Height: 0},
			check: func(t *testing.T, c Config) {
				if c.Width != DefaultWidth || c.Height != DefaultHeight {
					t.Errorf("canvas = %dx%d", c.Width, c.Height)
				}
			},
		},
		{
			name: "upper bounds",
			in:   Config{Width: 1 << 30, Height: MaxDimension + 1, ShapeCount: 1 << 61, MinSize: 1 << 20, MaxSize: 1 << 20, MaxTextureScale: 1e9},
			check: func(t *testing.T, c Config) {
				if c.Width != MaxDimension || c.Height != MaxDimension {
					t.Errorf("canvas = %dx%d", c.Width, c.Height)
				}
				if c.ShapeCount != MaxShapeCount {
					t.Errorf("ShapeCount = %d, want %d", c.ShapeCount, MaxShapeCount)
				}
				if c.MinSize != MaxShapeSize || c.MaxSize != MaxShapeSize {
					t.Errorf("size range = [%d, %d]", c.MinSize, c.MaxSize)
				}
				if c.MaxTextureScale != TextureScaleLimit {
					t.Errorf("MaxTextureScale = %v", c.MaxTextureScale)
				}
			},
		},
		{
			name: "unknown patterns dropped",
			in:   Config{Patterns: []string{"zigzag", "dots", " hatch "}},
			check: func(t *testing.T, c Config) {
				if !slices.Equal(c.Patterns, []string{art.PatternDots, art.PatternHatch}) {
					t.Errorf("Patterns = %v", c.Patterns)
				}
			},
		},
		{
			name: "only unknown patterns",
			in:   Config{Patterns: []string{"zigzag"}},
			check: func(t *testing.T, c Config) {
				if !slices.Equal(c.Patterns, DefaultPatterns) {
					t.Errorf("Patterns = %v", c.Patterns)
				}
			},
		},
		{
			name: "empty colors dropped",
			in:   Config{Colors: []string{"", "#000000"}},
			check: func(t *testing.T, c Config) {
				if !slices.Equal(c.Colors, []string{"#000000"}) {
					t.Errorf("Colors = %v", c.Colors)
				}
			},
		},
		{
			name: "unknown placement",
			in:   Config{Placement: "diagonal"},
			check: func(t *testing.T, c Config) {
				if c.Placement != PlacementSpread {
					t.Errorf("Placement = %q", c.Placement)
				}
			},
		},
		{
			name: "inverted sizes kept",
			in:   Config{MinSize: 50, MaxSize: 10},
			check: func(t *testing.T, c Config) {
				if c.MinSize != 50 || c.MaxSize != 10 {
					t.Errorf("sizes = [%d, %d], want untouched", c.MinSize, c.MaxSize)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.in.WithDefaults())
		})
	}
}

func TestWithDefaultsDoesNotAlias(t *testing.T) {
	seed := uint32(5)
	in := Config{Seed: &seed}
	out := in.WithDefaults()
	*out.Seed = 6
	if seed != 5 {
		t.Error("WithDefaults should copy the seed pointer")
	}
}
