package sink

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/foldline/storypress/pkg/layout"
)

// PNGOption configures PNG preview rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	showGuides bool
}

// WithScale sets the preview scale factor (default 0.5; print canvases are
// large and previews do not need full resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithGuides draws bleed and margin guide boxes on the preview.
func WithGuides() PNGOption {
	return func(r *pngRenderer) { r.showGuides = true }
}

var (
	fontOnce   sync.Once
	parsedFont *opentype.Font
	fontErr    error
)

// captionFace builds a font face at the given pixel size.
// The Go regular face stands in for the authored caption font; previews are
// proofs of geometry, not typography.
func captionFace(sizePx float64) (font.Face, error) {
	fontOnce.Do(func() {
		parsedFont, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	return opentype.NewFace(parsedFont, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// RenderPNG rasterizes a proofing preview of one page layout.
//
// Image elements are drawn as placeholder panels (the illustration bytes
// live behind an opaque URL this module never dereferences); text elements
// are drawn with wrapped caption text. Elements render in slice order, which
// the engine guarantees is ascending z-index.
func RenderPNG(l layout.PageLayout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 0.5}
	for _, opt := range opts {
		opt(&r)
	}

	w := int(float64(l.Canvas.WidthPx) * r.scale)
	h := int(float64(l.Canvas.HeightPx) * r.scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("layout canvas %dx%d too small to preview at scale %g",
			l.Canvas.WidthPx, l.Canvas.HeightPx, r.scale)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if r.showGuides {
		drawGuides(dc, l.Canvas, r.scale)
	}

	for i := range l.Elements {
		if err := drawElement(dc, &l.Elements[i], r.scale); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawGuides draws the bleed (outer) and margin (inner) boxes.
func drawGuides(dc *gg.Context, c layout.Canvas, scale float64) {
	w := float64(c.WidthPx) * scale
	h := float64(c.HeightPx) * scale

	bleed := float64(c.BleedPx) * scale
	dc.SetRGBA(0.85, 0.3, 0.3, 0.6)
	dc.SetLineWidth(1)
	dc.DrawRectangle(bleed, bleed, w-2*bleed, h-2*bleed)
	dc.Stroke()

	margin := float64(c.MarginPx) * scale
	dc.SetRGBA(0.3, 0.5, 0.85, 0.6)
	dc.DrawRectangle(margin, margin, w-2*margin, h-2*margin)
	dc.Stroke()
}

// drawElement renders one element, honoring its center anchor and rotation.
func drawElement(dc *gg.Context, el *layout.Element, scale float64) error {
	x := el.X * scale
	y := el.Y * scale
	w := el.Width * scale
	h := el.Height * scale

	dc.Push()
	defer dc.Pop()
	if el.Rotation != 0 {
		dc.RotateAbout(gg.Radians(el.Rotation), x, y)
	}

	switch {
	case el.IsImage():
		dc.SetRGB(0.82, 0.86, 0.92)
		dc.DrawRectangle(x-w/2, y-h/2, w, h)
		dc.Fill()
		dc.SetRGB(0.45, 0.5, 0.6)
		dc.SetLineWidth(2)
		dc.DrawRectangle(x-w/2, y-h/2, w, h)
		dc.Stroke()
	case el.IsText():
		sizePx := 48.0
		lineHeight := 1.4
		if el.Style != nil {
			if el.Style.SizePx > 0 {
				sizePx = el.Style.SizePx
			}
			if el.Style.LineHeight > 0 {
				lineHeight = el.Style.LineHeight
			}
		}
		face, err := captionFace(sizePx * scale)
		if err != nil {
			return fmt.Errorf("load caption font: %w", err)
		}
		dc.SetFontFace(face)
		dc.SetRGB(0.2, 0.18, 0.14)
		dc.DrawStringWrapped(el.Content, x, y, 0.5, 0.5, w, lineHeight, alignFor(el.Style))
	}
	return nil
}

// alignFor maps an authored alignment to the gg equivalent.
func alignFor(s *layout.TextStyle) gg.Align {
	if s == nil {
		return gg.AlignCenter
	}
	switch s.Align {
	case "left":
		return gg.AlignLeft
	case "right":
		return gg.AlignRight
	default:
		return gg.AlignCenter
	}
}
