package edit

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/core/generate"
	"github.com/matzehuels/scatter/pkg/core/render/sink"
	"github.com/matzehuels/scatter/pkg/errors"
)

func fixture() *art.Composition {
	return &art.Composition{
		Meta: art.Meta{Width: 400, Height: 400, Seed: 1, ShapeCount: 3},
		Shapes: []art.Shape{
			{ID: "a", Form: art.Rect{}, X: 10, Y: 10, Size: 20, Color: "#000", Pattern: art.PatternSolid, Layer: 1, TextureScale: 1},
			{ID: "b", Form: art.Circle{}, X: 50, Y: 50, Size: 40, Color: "#fff", Pattern: art.PatternDots, Rotation: 350, Layer: 2, TextureScale: 1},
			{ID: "c", Form: art.Rect{}, X: 90, Y: 90, Size: 10, Color: "#f00", Pattern: art.PatternSolid, Layer: art.StampLayer, TextureScale: 1},
		},
	}
}

func ids(c *art.Composition) []string {
	out := make([]string, len(c.Shapes))
	for i, s := range c.Shapes {
		out[i] = s.ID
	}
	return out
}

func TestTransforms(t *testing.T) {
	c := fixture()

	if err := Move(c, "a", 100, 200); err != nil {
		t.Fatal(err)
	}
	if err := Nudge(c, "a", -5, 5); err != nil {
		t.Fatal(err)
	}
	if got := c.Shapes[0]; got.X != 95 || got.Y != 205 {
		t.Errorf("position = (%g, %g), want (95, 205)", got.X, got.Y)
	}

	if err := RotateBy(c, "b", 20); err != nil {
		t.Fatal(err)
	}
	if got := c.Shapes[1].Rotation; got != 10 {
		t.Errorf("rotation = %g, want 10 after wrapping", got)
	}
	if err := Rotate(c, "b", -90); err != nil {
		t.Fatal(err)
	}
	if got := c.Shapes[1].Rotation; got != 270 {
		t.Errorf("rotation = %g, want 270", got)
	}

	if err := Scale(c, "b", 0.5); err != nil {
		t.Fatal(err)
	}
	if got := c.Shapes[1].Size; got != 20 {
		t.Errorf("size = %g, want 20", got)
	}
	if err := Scale(c, "b", 1e-9); err != nil {
		t.Fatal(err)
	}
	if got := c.Shapes[1].Size; got != MinSize {
		t.Errorf("size = %g, want floor %g", got, MinSize)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(c *art.Composition) error
		code errors.Code
	}{
		{"move unknown", func(c *art.Composition) error { return Move(c, "zz", 0, 0) }, errors.ErrCodeShapeNotFound},
		{"delete unknown", func(c *art.Composition) error { return Delete(c, "zz") }, errors.ErrCodeShapeNotFound},
		{"front unknown", func(c *art.Composition) error { return BringToFront(c, "zz") }, errors.ErrCodeShapeNotFound},
		{"move NaN", func(c *art.Composition) error { return Move(c, "a", math.NaN(), 0) }, errors.ErrCodeInvalidInput},
		{"rotate Inf", func(c *art.Composition) error { return Rotate(c, "a", math.Inf(1)) }, errors.ErrCodeInvalidInput},
		{"scale zero", func(c *art.Composition) error { return Scale(c, "a", 0) }, errors.ErrCodeInvalidInput},
		{"scale negative", func(c *art.Composition) error { return Scale(c, "a", -2) }, errors.ErrCodeInvalidInput},
		{"resize tiny", func(c *art.Composition) error { return Resize(c, "a", 0.5) }, errors.ErrCodeInvalidInput},
		{"recolor bad", func(c *art.Composition) error { return Recolor(c, "a", `"/>`) }, errors.ErrCodeInvalidColor},
		{"pattern unknown", func(c *art.Composition) error { return SetPattern(c, "a", "plaid", 1) }, errors.ErrCodeInvalidPattern},
		{"layer out of range", func(c *art.Composition) error { return SetLayer(c, "a", 6) }, errors.ErrCodeInvalidLayer},
		{"reseed stamps", func(c *art.Composition) error {
			return ReseedLayer(c, art.StampLayer, 1, generate.Config{})
		}, errors.ErrCodeInvalidLayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fixture()
			before := c.Clone()
			err := tt.fn(c)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if diff := cmp.Diff(before, *c); diff != "" {
				t.Errorf("failed op changed the composition:\n%s", diff)
			}
		})
	}
}

func TestPaintOrder(t *testing.T) {
	c := fixture()

	if err := BringToFront(c, "a"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b", "c", "a"}, ids(c)); diff != "" {
		t.Errorf("after front (-want +got):\n%s", diff)
	}
	if err := SendToBack(c, "c"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids(c)); diff != "" {
		t.Errorf("after back (-want +got):\n%s", diff)
	}
	if err := Delete(c, "b"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"c", "a"}, ids(c)); diff != "" {
		t.Errorf("after delete (-want +got):\n%s", diff)
	}
}

func TestFindFirstOfDuplicates(t *testing.T) {
	c := fixture()
	c.Shapes[2].ID = "a"
	i, ok := Find(c, "a")
	if !ok || i != 0 {
		t.Errorf("Find = %d, %v; want 0, true", i, ok)
	}
	if err := Move(c, "a", 1, 1); err != nil {
		t.Fatal(err)
	}
	if c.Shapes[2].X != 90 {
		t.Error("only the first match should move")
	}
}

func TestAdd(t *testing.T) {
	c := fixture()
	c.Shapes[0].ID = "shape-4"

	s, err := Add(c, art.Shape{X: 5, Y: 5, Size: 10, Color: "#123456", Rotation: 720 + 45})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := art.Shape{
		ID: "shape-5", Form: art.Rect{}, X: 5, Y: 5, Size: 10, Color: "#123456",
		Pattern: art.PatternSolid, Rotation: 45, Layer: 4, TextureScale: 1,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Add mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, c.Shapes[len(c.Shapes)-1]); diff != "" {
		t.Errorf("stored shape differs (-want +got):\n%s", diff)
	}

	s, err = Add(c, art.Shape{Size: 10, Color: "#123456"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Layer != 5 || s.ID != "shape-6" {
		t.Errorf("second add = %s on layer %v, want shape-6 on 5", s.ID, s.Layer)
	}
	s, err = Add(c, art.Shape{Size: 10, Color: "#123456"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Layer != 1 {
		t.Errorf("layer = %v, want round robin back to 1", s.Layer)
	}
}

func TestAddRejects(t *testing.T) {
	tests := []struct {
		name  string
		shape art.Shape
		code  errors.Code
	}{
		{"bad id", art.Shape{ID: "<x>", Size: 1, Color: "#000"}, errors.ErrCodeInvalidInput},
		{"no size", art.Shape{Color: "#000"}, errors.ErrCodeInvalidInput},
		{"no color", art.Shape{Size: 4}, errors.ErrCodeInvalidColor},
		{"bad pattern", art.Shape{Size: 4, Color: "#000", Pattern: "plaid"}, errors.ErrCodeInvalidPattern},
		{"bad layer", art.Shape{Size: 4, Color: "#000", Layer: 9}, errors.ErrCodeInvalidLayer},
		{"empty stamp", art.Shape{Size: 4, Color: "#000", Form: art.Stamp{}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fixture()
			if _, err := Add(c, tt.shape); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if len(c.Shapes) != 3 {
				t.Error("rejected shape was appended")
			}
		})
	}
}

func TestAddStamp(t *testing.T) {
	c := fixture()
	st := art.Stamp{Path: "M0 0h6v3h-6Z", Width: 6, Height: 3, Resolution: 4}

	s, err := AddStamp(c, st, 30, 40, "")
	if err != nil {
		t.Fatalf("AddStamp: %v", err)
	}
	if s.Layer != art.StampLayer {
		t.Errorf("layer = %v, want stamps", s.Layer)
	}
	if s.Size != 24 {
		t.Errorf("size = %g, want 24 (extent 6 x resolution 4)", s.Size)
	}
	if s.Color != DefaultStampColor {
		t.Errorf("color = %q, want default", s.Color)
	}
	if diff := cmp.Diff(art.Form(st), s.Form); diff != "" {
		t.Errorf("form mismatch (-want +got):\n%s", diff)
	}

	if _, err := AddStamp(c, art.Stamp{Width: 1, Height: 1}, 0, 0, "#000"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("stamp without path: error = %v", err)
	}
}

func TestBackground(t *testing.T) {
	c := fixture()

	if err := SetBackground(c, art.Background{Color: "#eeeeee"}); err != nil {
		t.Fatal(err)
	}
	want := &art.Background{Color: "#eeeeee", Texture: art.TextureSolid, TextureScale: 1}
	if diff := cmp.Diff(want, c.Background); diff != "" {
		t.Errorf("background mismatch (-want +got):\n%s", diff)
	}

	st := &art.Stamp{Path: "M0 0h1v1h-1Z", Width: 1, Height: 1}
	if err := SetBackground(c, art.Background{Color: "#fff", Texture: art.TextureStamp, Stamp: st, TextureScale: 2}); err != nil {
		t.Fatal(err)
	}
	st.Path = "changed"
	if c.Background.Stamp.Path != "M0 0h1v1h-1Z" {
		t.Error("background shares the caller's stamp")
	}

	for _, bad := range []art.Background{
		{Color: ""},
		{Color: "#fff", Texture: art.TexturePattern, Pattern: "plaid"},
		{Color: "#fff", Texture: art.TextureStamp},
		{Color: "#fff", Texture: "noise"},
		{Color: "#fff", Ink: "url(#x)"},
	} {
		if err := SetBackground(c, bad); err == nil {
			t.Errorf("SetBackground(%+v) accepted", bad)
		}
	}

	ClearBackground(c)
	if c.Background != nil {
		t.Error("background not cleared")
	}
}

func TestReseedLayerKeepsBoundedPlacement(t *testing.T) {
	c := generate.Generate(generate.Config{
		Width: 300, Height: 200, ShapeCount: 60, Seed: generate.Seed(4),
		Placement: generate.PlacementBounded,
	})
	back := codec.Decode(sink.RenderSVG(c))
	if back == nil || back.Meta.Placement != string(generate.PlacementBounded) {
		t.Fatalf("decoded meta = %+v", back)
	}

	if err := ReseedLayer(back, 2, 77, generate.Config{}); err != nil {
		t.Fatal(err)
	}
	for _, s := range back.Shapes {
		if s.Layer != 2 {
			continue
		}
		half := s.Size / 2
		if s.X-half < 0 || s.X+half > 300 || s.Y-half < 0 || s.Y+half > 200 {
			t.Errorf("reseeded shape %s at (%v, %v) size %v leaves the canvas", s.ID, s.X, s.Y, s.Size)
		}
	}
}

func TestReseedLayer(t *testing.T) {
	cfg := generate.Config{Width: 500, Height: 500, ShapeCount: 40}
	cfg.Seed = generate.Seed(1)
	c := generate.Generate(cfg)
	stamp, err := AddStamp(&c, art.Stamp{Path: "M0 0h1v1h-1Z", Width: 1, Height: 1}, 1, 1, "#000")
	if err != nil {
		t.Fatal(err)
	}

	before := c.Clone()
	if err := ReseedLayer(&c, 3, 99, cfg); err != nil {
		t.Fatalf("ReseedLayer: %v", err)
	}

	// Shapes off layer 3 keep their relative order.
	var keptBefore, keptAfter []art.Shape
	for _, s := range before.Shapes {
		if s.Layer != 3 {
			keptBefore = append(keptBefore, s)
		}
	}
	for _, s := range c.Shapes {
		if s.Layer != 3 {
			keptAfter = append(keptAfter, s)
		}
	}
	if diff := cmp.Diff(keptBefore, keptAfter); diff != "" {
		t.Errorf("other layers changed (-want +got):\n%s", diff)
	}
	if _, ok := Find(&c, stamp.ID); !ok {
		t.Error("stamp was removed by reseeding")
	}

	want := generate.RegenerateLayer(c.Meta, 3, 99, cfg)
	got := c.Shapes[len(keptAfter):]
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("reseeded layer mismatch (-want +got):\n%s", diff)
	}
	for _, s := range got {
		if s.Layer != 3 {
			t.Errorf("shape %s on layer %v", s.ID, s.Layer)
		}
	}
}

func TestOpJSON(t *testing.T) {
	var ops []Op
	err := json.Unmarshal([]byte(`[
		{"op": "move", "shape": "a", "x": 10, "y": 20},
		{"op": "rotate-by", "shape": "a", "degrees": 15},
		{"op": "scale", "shape": "b", "factor": 2},
		{"op": "front", "shape": "a"},
		{"op": "add", "add": {"kind": "circle", "x": 1, "y": 2, "size": 3, "color": "#abc"}},
		{"op": "stamp", "stamp": {"path": "M0 0h2v2h-2Z", "width": 2, "height": 2}, "x": 4, "y": 5},
		{"op": "background", "background": {"color": "#fafafa", "texture": "pattern", "pattern": "stripes"}},
		{"op": "layer", "shape": "c", "layer": "stamps"}
	]`), &ops)
	if err != nil {
		t.Fatalf("unmarshal ops: %v", err)
	}

	c := fixture()
	if err := ApplyAll(c, ops...); err != nil {
		t.Fatalf("ApplyAll: %v", err)
	}

	if diff := cmp.Diff([]string{"b", "c", "a", "shape-4", "shape-5"}, ids(c)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	a := c.Shapes[2]
	if a.X != 10 || a.Y != 20 || a.Rotation != 15 {
		t.Errorf("a = %+v", a)
	}
	if c.Shapes[0].Size != 80 {
		t.Errorf("b size = %g, want 80", c.Shapes[0].Size)
	}
	if added := c.Shapes[3]; added.Kind() != art.KindCircle || added.Layer != 4 {
		t.Errorf("added = %+v, want circle on round robin layer 4", added)
	}
	if st := c.Shapes[4]; st.Layer != art.StampLayer || st.Size != 2 {
		t.Errorf("stamp = %+v", st)
	}
	if c.Background == nil || c.Background.Pattern != art.PatternStripes || c.Background.TextureScale != 1 {
		t.Errorf("background = %+v", c.Background)
	}
}

func TestApplyAllIsAtomic(t *testing.T) {
	c := fixture()
	before := c.Clone()
	err := ApplyAll(c,
		Op{Op: OpMove, Shape: "a", X: 1, Y: 1},
		Op{Op: OpDelete, Shape: "missing"},
	)
	if !errors.Is(err, errors.ErrCodeShapeNotFound) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeShapeNotFound)
	}
	if diff := cmp.Diff(before, *c); diff != "" {
		t.Errorf("partial ops applied:\n%s", diff)
	}
}

func TestOpUnknown(t *testing.T) {
	c := fixture()
	if err := (Op{Op: "explode"}).Apply(c); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
	if err := (Op{}).Apply(c); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}
