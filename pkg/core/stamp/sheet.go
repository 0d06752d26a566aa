package stamp

import (
	"image"
	"image/draw"

	"github.com/matzehuels/scatter/pkg/core/art"
	"github.com/matzehuels/scatter/pkg/errors"
)

// SliceSheet cuts a stamp sheet into cols x rows equal cells, in row-major
// order. Remainder pixels on the right and bottom edges are dropped.
func SliceSheet(img image.Image, cols, rows int) ([]image.Image, error) {
	if cols < 1 || rows < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sheet grid must be at least 1x1, got %dx%d", cols, rows)
	}
	b := img.Bounds()
	cw, ch := b.Dx()/cols, b.Dy()/rows
	if cw < 1 || ch < 1 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "sheet %dx%d too small for a %dx%d grid", b.Dx(), b.Dy(), cols, rows)
	}

	cells := make([]image.Image, 0, cols*rows)
	for r := range rows {
		for c := range cols {
			rect := image.Rect(b.Min.X+c*cw, b.Min.Y+r*ch, b.Min.X+(c+1)*cw, b.Min.Y+(r+1)*ch)
			cells = append(cells, crop(img, rect))
		}
	}
	return cells, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func crop(img image.Image, r image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// FromSheet slices a sheet and traces every cell. Cells without ink are
// skipped; a sheet with no ink at all is an error.
func FromSheet(img image.Image, cols, rows int, opts Options) ([]art.Stamp, error) {
	cells, err := SliceSheet(img, cols, rows)
	if err != nil {
		return nil, err
	}

	var stamps []art.Stamp
	for _, cell := range cells {
		st, err := FromImage(cell, opts)
		if errors.Is(err, errors.ErrCodeInvalidImage) {
			continue
		}
		if err != nil {
			return nil, err
		}
		stamps = append(stamps, st)
	}
	if len(stamps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "sheet contains no ink")
	}
	return stamps, nil
}
