package edit

import (
	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/core/codec"
	"github.com/matzehuels/scatter/pkg/core/generate"
	"github.com/matzehuels/scatter/pkg/errors"
)

// OpKind names an edit command.
type OpKind string

const (
	OpMove            OpKind = "move"
	OpNudge           OpKind = "nudge"
	OpRotate          OpKind = "rotate"
	OpRotateBy        OpKind = "rotate-by"
	OpScale           OpKind = "scale"
	OpResize          OpKind = "resize"
	OpRecolor         OpKind = "recolor"
	OpPattern         OpKind = "pattern"
	OpLayer           OpKind = "layer"
	OpDelete          OpKind = "delete"
	OpFront           OpKind = "front"
	OpBack            OpKind = "back"
	OpAdd             OpKind = "add"
	OpStamp           OpKind = "stamp"
	OpBackground      OpKind = "background"
	OpClearBackground OpKind = "clear-background"
	OpReseed          OpKind = "reseed"
)

// Op is a serializable edit command, e.g.
//
//	{"op": "move", "shape": "shape-1", "x": 10, "y": 20}
//	{"op": "rotate-by", "shape": "shape-1", "degrees": 15}
//	{"op": "reseed", "layer": 3, "seed": 42}
//
// Which fields are read depends on Op.
type Op struct {
	Op    OpKind `json:"op"`
	Shape string `json:"shape,omitempty"`

	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	DX      float64 `json:"dx,omitempty"`
	DY      float64 `json:"dy,omitempty"`
	Degrees float64 `json:"degrees,omitempty"`
	Factor  float64 `json:"factor,omitempty"`
	Size    float64 `json:"size,omitempty"`

	Color        string     `json:"color,omitempty"`
	Pattern      string     `json:"pattern,omitempty"`
	TextureScale float64    `json:"textureScale,omitempty"`
	Layer        *art.Layer `json:"layer,omitempty"`

	// Add carries the new shape for "add".
	Add *codec.ShapeJSON `json:"add,omitempty"`
	// Stamp carries the stamp geometry for "stamp".
	Stamp *art.Stamp `json:"stamp,omitempty"`
	// Background carries the new background for "background".
	Background *codec.BackgroundJSON `json:"background,omitempty"`

	// Seed and Config drive "reseed". A nil seed draws one from the clock.
	Seed   *uint32          `json:"seed,omitempty"`
	Config *generate.Config `json:"config,omitempty"`
}

// Apply runs the command against c.
func (o Op) Apply(c *art.Composition) error {
	switch o.Op {
	case OpMove:
		return Move(c, o.Shape, o.X, o.Y)
	case OpNudge:
		return Nudge(c, o.Shape, o.DX, o.DY)
	case OpRotate:
		return Rotate(c, o.Shape, o.Degrees)
	case OpRotateBy:
		return RotateBy(c, o.Shape, o.Degrees)
	case OpScale:
		return Scale(c, o.Shape, o.Factor)
	case OpResize:
		return Resize(c, o.Shape, o.Size)
	case OpRecolor:
		return Recolor(c, o.Shape, o.Color)
	case OpPattern:
		return SetPattern(c, o.Shape, o.Pattern, o.TextureScale)
	case OpLayer:
		if o.Layer == nil {
			return errors.New(errors.ErrCodeInvalidLayer, "layer op needs a layer")
		}
		return SetLayer(c, o.Shape, *o.Layer)
	case OpDelete:
		return Delete(c, o.Shape)
	case OpFront:
		return BringToFront(c, o.Shape)
	case OpBack:
		return SendToBack(c, o.Shape)
	case OpAdd:
		if o.Add == nil {
			return errors.New(errors.ErrCodeInvalidInput, "add op needs a shape")
		}
		s := o.Add.Shape()
		if o.Add.Layer == nil {
			s.Layer = 0
		}
		_, err := Add(c, s)
		return err
	case OpStamp:
		if o.Stamp == nil {
			return errors.New(errors.ErrCodeInvalidInput, "stamp op needs a stamp")
		}
		_, err := AddStamp(c, *o.Stamp, o.X, o.Y, o.Color)
		return err
	case OpBackground:
		if o.Background == nil {
			return errors.New(errors.ErrCodeInvalidInput, "background op needs a background")
		}
		return SetBackground(c, o.Background.Background())
	case OpClearBackground:
		ClearBackground(c)
		return nil
	case OpReseed:
		if o.Layer == nil {
			return errors.New(errors.ErrCodeInvalidLayer, "reseed op needs a layer")
		}
		seed := generate.TimeSeed()
		if o.Seed != nil {
			seed = *o.Seed
		}
		var cfg generate.Config
		if o.Config != nil {
			cfg = *o.Config
		}
		return ReseedLayer(c, *o.Layer, seed, cfg)
	case "":
		return errors.New(errors.ErrCodeInvalidInput, "missing op")
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown op %q", o.Op)
	}
}

// ApplyAll runs ops in order. It is all or nothing: if any op fails, c is
// left as it was and the error names the failing op's position.
func ApplyAll(c *art.Composition, ops ...Op) error {
	work := c.Clone()
	for i, op := range ops {
		if err := op.Apply(&work); err != nil {
			return errors.New(errors.GetCode(err), "op %d (%s): %s", i, op.Op, errors.UserMessage(err))
		}
	}
	*c = work
	return nil
}
