package generate

import (
	"math"
	"strconv"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/rng"
)

// primitives is the form pool used without stamps. Rect and circle are each
// listed twice; the four-way draw is what the reference stream consumes.
var primitives = []art.Form{art.Rect{}, art.Circle{}, art.Rect{}, art.Circle{}}

// Generate produces a composition from cfg. It never fails; unusable config
// values are replaced by defaults first.
//
// ShapeCount shapes are drawn, followed by a decorative pass of
// floor(ShapeCount*DecorativeRatio) more shapes from the same stream.
// Meta.ShapeCount reports the total.
func Generate(cfg Config) art.Composition {
	cfg = cfg.WithDefaults()
	s := rng.New(*cfg.Seed)

	decorative := DecorativeCount(cfg.ShapeCount)
	shapes := make([]art.Shape, 0, cfg.ShapeCount+decorative)
	for range cfg.ShapeCount {
		shapes = append(shapes, synthesize(s, &cfg))
	}
	for range decorative {
		shapes = append(shapes, synthesize(s, &cfg))
	}

	meta := art.Meta{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Seed:       *cfg.Seed,
		ShapeCount: len(shapes),
	}
	if cfg.Placement == PlacementBounded {
		meta.Placement = string(PlacementBounded)
	}
	return art.Composition{Meta: meta, Shapes: shapes}
}

// DecorativeCount returns the size of the decorative pass for n base shapes.
func DecorativeCount(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Floor(float64(n) * DecorativeRatio))
}

// TotalCount returns how many shapes Generate produces for n base shapes.
func TotalCount(n int) int {
	return n + DecorativeCount(n)
}

// synthesize draws one shape. The order of draws is fixed; changing it
// changes every shape produced afterwards.
func synthesize(s *rng.Stream, cfg *Config) art.Shape {
	size := s.Int(cfg.MinSize, cfg.MaxSize)
	x, y := place(s, cfg, float64(size))

	color := rng.Choice(s, cfg.Colors)
	pattern := rng.Choice(s, cfg.Patterns)

	rotation := 0.0
	if *cfg.RandomRotation {
		rotation = s.Float64() * 360
	}

	layer := art.Layer(s.Int(int(art.MinLayer), int(art.MaxLayer)))
	textureScale := s.Range(cfg.MinTextureScale, cfg.MaxTextureScale)

	var form art.Form
	if len(cfg.Stamps) > 0 {
		form = rng.Choice(s, cfg.Stamps)
	} else {
		form = rng.Choice(s, primitives)
	}

	id := "shape-" + strconv.Itoa(int(math.Floor(s.Float64()*idSpace)))

	return art.Shape{
		ID:           id,
		Form:         form,
		X:            x,
		Y:            y,
		Size:         float64(size),
		Color:        color,
		Pattern:      pattern,
		Rotation:     rotation,
		Layer:        layer,
		TextureScale: textureScale,
	}
}

func place(s *rng.Stream, cfg *Config, size float64) (x, y float64) {
	w, h := float64(cfg.Width), float64(cfg.Height)
	if cfg.Placement == PlacementBounded {
		x = size/2 + s.Float64()*(w-size)
		y = size/2 + s.Float64()*(h-size)
		return x, y
	}
	extent := cfg.Spread * min(w, h) / 2
	x = w/2 + (2*s.Float64()-1)*extent
	y = h/2 + (2*s.Float64()-1)*extent
	return x, y
}

// RegenerateLayer returns the shapes a fresh generation with seed would put
// on layer. The canvas size comes from meta so regenerated shapes fit the
// existing composition, as does the placement unless cfg sets one; every
// other setting comes from cfg.
func RegenerateLayer(meta art.Meta, layer art.Layer, seed uint32, cfg Config) []art.Shape {
	cfg.Seed = Seed(seed)
	if meta.Width > 0 {
		cfg.Width = meta.Width
	}
	if meta.Height > 0 {
		cfg.Height = meta.Height
	}
	if cfg.Placement == "" {
		cfg.Placement = Placement(meta.Placement)
	}

	fresh := Generate(cfg)
	var out []art.Shape
	for _, sh := range fresh.Shapes {
		if sh.Layer == layer {
			out = append(out, sh)
		}
	}
	return out
}
