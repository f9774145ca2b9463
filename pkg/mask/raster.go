package mask

import (
	"bytes"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/foldline/storypress/pkg/errors"
)

// Raster is the small drawing surface mask generation is built on: a pixel
// buffer with fill-rect, fill-ellipse, and border-stroke primitives. It keeps
// the generators decoupled from the graphics backend — nothing outside this
// file touches gg directly.
type Raster struct {
	dc     *gg.Context
	width  int
	height int
}

// Shades for the two luminance classes. Preserve regions are black, editable
// regions are white; the soft boundary stroke is the only exception.
var (
	shadeEditable = color.Gray{Y: 255}
	shadePreserve = color.Gray{Y: 0}
)

// NewRaster creates a raster filled entirely with the given shade.
func NewRaster(width, height int, fill color.Color) *Raster {
	dc := gg.NewContext(width, height)
	dc.SetColor(fill)
	dc.Clear()
	return &Raster{dc: dc, width: width, height: height}
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the raster height in pixels.
func (r *Raster) Height() int { return r.height }

// FillRect fills an axis-aligned rectangle given by top-left corner and size.
// Coordinates are clamped by the backend; out-of-bounds areas are ignored.
func (r *Raster) FillRect(x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	r.dc.SetColor(c)
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()
}

// FillEllipse fills an ellipse given by center and radii.
func (r *Raster) FillEllipse(cx, cy, rx, ry float64, c color.Color) {
	if rx <= 0 || ry <= 0 {
		return
	}
	r.dc.SetColor(c)
	r.dc.DrawEllipse(cx, cy, rx, ry)
	r.dc.Fill()
}

// StrokeEllipse draws an ellipse outline with the given line width.
// Used for the semi-transparent softening stroke along preserve boundaries.
func (r *Raster) StrokeEllipse(cx, cy, rx, ry, lineWidth float64, c color.Color) {
	r.dc.SetColor(c)
	r.dc.SetLineWidth(lineWidth)
	r.dc.DrawEllipse(cx, cy, rx, ry)
	r.dc.Stroke()
}

// StrokeRect draws a rectangle outline with the given line width.
func (r *Raster) StrokeRect(x, y, w, h, lineWidth float64, c color.Color) {
	r.dc.SetColor(c)
	r.dc.SetLineWidth(lineWidth)
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Stroke()
}

// Image returns the underlying image.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// Resize samples the raster to the given dimensions, for inpainting models
// whose input resolution differs from the authoring canvas. Nearest-neighbor
// sampling keeps every output pixel in one of the two luminance classes;
// interpolating scalers would smear the boundary into a third.
func (r *Raster) Resize(width, height int) (*Raster, error) {
	if err := errors.ValidateMaskSize(width, height); err != nil {
		return nil, err
	}
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	src := r.dc.Image()
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	out := NewRaster(width, height, shadeEditable)
	out.dc.DrawImage(scaled, 0, 0)
	return out, nil
}

// PNG encodes the raster as PNG bytes.
func (r *Raster) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsPreserve reports whether the pixel at (x, y) belongs to the preserve
// class. Classification is by luminance midpoint so the softening stroke
// splits between the two classes rather than forming a third.
func (r *Raster) IsPreserve(x, y int) bool {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return false
	}
	c := color.GrayModel.Convert(r.dc.Image().At(x, y)).(color.Gray)
	return c.Y < 128
}
