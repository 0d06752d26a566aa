// Package stamp turns bitmaps into vector stamps.
//
// A bitmap is optionally downsampled by a resolution divisor, its ink pixels
// are classified by alpha and luminance, cropped to their bounding box and
// traced as run-length rectangles. Runs that repeat on consecutive rows are
// merged into taller rectangles, so solid areas stay compact:
//
//	img, _, err := stamp.Decode(f)
//	st, err := stamp.FromImage(img, stamp.Options{Resolution: 4})
//
// The resulting [art.Stamp] path lives in a Width x Height local space.
// Resolution records the divisor so the stamp can be placed at its native
// size later.
package stamp

import (
	"bytes"
	"cmp"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/errors"
)

const (
	// DefaultThreshold separates ink from paper on the 0-255 luminance scale.
	DefaultThreshold = 128

	// alphaCutoff is the opacity below which a pixel is never ink.
	alphaCutoff = 128

	// MaxPixels bounds the traced area after downsampling.
	MaxPixels = 1 << 20

	// MaxSourcePixels bounds the declared size of a decoded image. It is
	// checked against the header before any pixel buffer is allocated.
	MaxSourcePixels = 1 << 25
)

// Options controls ink classification and downsampling.
type Options struct {
	// Resolution divides both dimensions before tracing. Values below 1
	// mean 1.
	Resolution int `json:"resolution,omitempty"`

	// Threshold is the luminance below which an opaque pixel is ink.
	// Zero selects DefaultThreshold.
	Threshold uint8 `json:"threshold,omitempty"`

	// Invert treats light pixels as ink instead of dark ones.
	Invert bool `json:"invert,omitempty"`

	// Alpha classifies by opacity alone, ignoring color.
	Alpha bool `json:"alpha,omitempty"`
}

func (o Options) resolution() int {
	return max(o.Resolution, 1)
}

func (o Options) threshold() uint8 {
	if o.Threshold == 0 {
		return DefaultThreshold
	}
	return o.Threshold
}

// Decode reads a PNG, JPEG, GIF, BMP or WebP image. Images whose header
// declares more than MaxSourcePixels are rejected without decoding.
func Decode(r io.Reader) (image.Image, string, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", errors.New(errors.ErrCodeInvalidImage, "image is empty")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, "", errors.New(errors.ErrCodeInvalidImage,
			"image too large (%dx%d); at most %d pixels", cfg.Width, cfg.Height, MaxSourcePixels)
	}

	img, format, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image")
	}
	return img, format, nil
}

// FromImage traces the ink of img into a stamp. An image without ink yields
// an ErrCodeInvalidImage error.
func FromImage(img image.Image, opts Options) (art.Stamp, error) {
	if img == nil || img.Bounds().Empty() {
		return art.Stamp{}, errors.New(errors.ErrCodeInvalidImage, "image is empty")
	}

	res := opts.resolution()
	src := downsample(img, res)
	b := src.Bounds()
	if b.Dx()*b.Dy() > MaxPixels {
		return art.Stamp{}, errors.New(errors.ErrCodeInvalidImage,
			"image too large to trace (%dx%d); raise the resolution divisor", b.Dx(), b.Dy())
	}

	mask := classify(src, opts)
	box, ok := mask.bounds()
	if !ok {
		return art.Stamp{}, errors.New(errors.ErrCodeInvalidImage, "image contains no ink")
	}

	return art.Stamp{
		Path:       trace(mask, box),
		Width:      float64(box.Dx()),
		Height:     float64(box.Dy()),
		Resolution: float64(res),
	}, nil
}

func downsample(img image.Image, res int) image.Image {
	if res <= 1 {
		return img
	}
	b := img.Bounds()
	w := int(math.Ceil(float64(b.Dx()) / float64(res)))
	h := int(math.Ceil(float64(b.Dy()) / float64(res)))
	dst := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// mask is a row-major ink bitmap.
type mask struct {
	w, h int
	ink  []bool
}

func (m *mask) at(x, y int) bool { return m.ink[y*m.w+x] }

func classify(img image.Image, opts Options) *mask {
	b := img.Bounds()
	m := &mask{w: b.Dx(), h: b.Dy(), ink: make([]bool, b.Dx()*b.Dy())}
	threshold := opts.threshold()

	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			m.ink[y*m.w+x] = isInk(c, threshold, opts)
		}
	}
	return m
}

func isInk(c color.NRGBA, threshold uint8, opts Options) bool {
	if c.A < alphaCutoff {
		return false
	}
	if opts.Alpha {
		return true
	}
	lum := (299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000
	dark := lum < uint32(threshold)
	return dark != opts.Invert
}

func (m *mask) bounds() (image.Rectangle, bool) {
	minX, minY, maxX, maxY := m.w, m.h, -1, -1
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if !m.at(x, y) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

type run struct{ x0, x1 int }

type rect struct {
	x, y, w, h int
}

// trace emits one subpath per merged rectangle, relative to box.
func trace(m *mask, box image.Rectangle) string {
	var (
		done []rect
		open = map[run]rect{}
	)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		seen := map[run]bool{}
		for _, r := range rowRuns(m, y, box) {
			seen[r] = true
			if cur, ok := open[r]; ok {
				cur.h++
				open[r] = cur
				continue
			}
			open[r] = rect{x: r.x0 - box.Min.X, y: y - box.Min.Y, w: r.x1 - r.x0, h: 1}
		}
		for r, cur := range open {
			if !seen[r] {
				done = append(done, cur)
				delete(open, r)
			}
		}
	}
	for _, cur := range open {
		done = append(done, cur)
	}
	slices.SortFunc(done, func(a, b rect) int {
		return cmp.Or(cmp.Compare(a.y, b.y), cmp.Compare(a.x, b.x))
	})

	var sb strings.Builder
	for _, r := range done {
		fmt.Fprintf(&sb, "M%d %dh%dv%dh%dZ", r.x, r.y, r.w, r.h, -r.w)
	}
	return sb.String()
}

func rowRuns(m *mask, y int, box image.Rectangle) []run {
	var runs []run
	x := box.Min.X
	for x < box.Max.X {
		if !m.at(x, y) {
			x++
			continue
		}
		start := x
		for x < box.Max.X && m.at(x, y) {
			x++
		}
		runs = append(runs, run{start, x})
	}
	return runs
}
