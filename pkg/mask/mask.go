// Package mask synthesizes the two-tone rasters that constrain iterative
// image edits: black marks regions an inpainting pass must preserve, white
// marks regions it may repaint.
//
// Three generators cover the three edit flows:
//   - character-preservation masks for pose-changing edits that must keep
//     the character's identity
//   - background-removal masks for isolating a character silhouette into a
//     style anchor
//   - scene-inpainting masks that open small bands for decorative detail
//     while protecting caption text and the character panel
//
// Masks are pure geometry — no RNG is involved — and their dimensions must
// exactly match the canvas they will be applied to, or the downstream
// inpainting call is invalid. An incorrectly computed preserve region lets
// the image model overwrite content that must survive, so this package gets
// the most rigorous tests in the module.
package mask

import (
	"image/color"

	"github.com/foldline/storypress/pkg/book"
	"github.com/foldline/storypress/pkg/errors"
)

// Canvas dimensions the generators target. Character masks match the square
// portrait canvas; scene masks match the landscape page canvas.
const (
	CharacterMaskSize = 1024

	SceneMaskWidth  = 1536
	SceneMaskHeight = 1024
)

// Scene mask geometry. All values are pixels on the 1536×1024 canvas.
const (
	// NarrationMargin expands the caption bounding box on all sides before
	// it is preserved, keeping inpainting clear of anti-aliased text edges.
	NarrationMargin = 80

	// PanelWidth is the width of the character half of the canvas.
	PanelWidth = 768

	// PanelInset shrinks the preserved character half so a thin border strip
	// of that half stays editable.
	PanelInset = 60

	// GutterWidth is the preserved spine strip between the two panels.
	GutterWidth = 40
)

// boundaryStroke softens the preserve/editable edge: a thin semi-transparent
// line keeps hard mask edges from feeding artifacts into the inpainting pass.
const boundaryStrokeWidth = 24

var shadeBoundary = color.NRGBA{R: 128, G: 128, B: 128, A: 140}

// PreserveLevel controls how much of a character is locked during a
// pose-changing edit.
type PreserveLevel string

// Preserve levels, from most conservative to most permissive.
const (
	// PreserveStrict locks head and full torso; minimal edit freedom.
	PreserveStrict PreserveLevel = "strict"
	// PreserveModerate locks head plus a narrower torso; balances identity
	// against pose flexibility.
	PreserveModerate PreserveLevel = "moderate"
	// PreserveLoose locks the head only; maximal pose-edit freedom.
	PreserveLoose PreserveLevel = "loose"
)

// PreserveLevelForAction picks the preserve level for a page's visual action.
// Still poses (sleeping, resting, portraits) tolerate the conservative mask;
// large body movements need the loose one; everything else is moderate.
func PreserveLevelForAction(action string) PreserveLevel {
	switch book.ClassifyAction(action) {
	case book.ActionStill:
		return PreserveStrict
	case book.ActionMoving:
		return PreserveLoose
	default:
		return PreserveModerate
	}
}

// CharacterPosition says which half of a landscape canvas the character
// panel occupies.
type CharacterPosition string

// Character positions.
const (
	PositionLeft  CharacterPosition = "left"
	PositionRight CharacterPosition = "right"
)

// Rect is an axis-aligned pixel rectangle given by top-left corner and size.
type Rect struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	W float64 `json:"w" bson:"w"`
	H float64 `json:"h" bson:"h"`
}

// Expand grows the rectangle by m on all four sides.
func (r Rect) Expand(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, W: r.W + 2*m, H: r.H + 2*m}
}

// Inset shrinks the rectangle by m on all four sides.
func (r Rect) Inset(m float64) Rect {
	return Rect{X: r.X + m, Y: r.Y + m, W: r.W - 2*m, H: r.H - 2*m}
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// CharacterMask builds the pose-edit mask for a 1024×1024 character canvas.
//
// The head/face ellipse is always preserved. Strict and moderate levels add
// a torso rectangle — full width for strict, narrower for moderate. A
// semi-transparent stroke softens the preserve boundary.
func CharacterMask(level PreserveLevel) *Raster {
	r := NewRaster(CharacterMaskSize, CharacterMaskSize, shadeEditable)

	const (
		headCX, headCY = CharacterMaskSize / 2, 380
		headRX, headRY = 290, 330
	)
	r.FillEllipse(headCX, headCY, headRX, headRY, shadePreserve)

	switch level {
	case PreserveStrict:
		torso := Rect{X: 212, Y: 560, W: 600, H: 440}
		r.FillRect(torso.X, torso.Y, torso.W, torso.H, shadePreserve)
		r.StrokeRect(torso.X, torso.Y, torso.W, torso.H, boundaryStrokeWidth, shadeBoundary)
	case PreserveModerate:
		torso := Rect{X: 322, Y: 600, W: 380, H: 360}
		r.FillRect(torso.X, torso.Y, torso.W, torso.H, shadePreserve)
		r.StrokeRect(torso.X, torso.Y, torso.W, torso.H, boundaryStrokeWidth, shadeBoundary)
	}

	r.StrokeEllipse(headCX, headCY, headRX, headRY, boundaryStrokeWidth, shadeBoundary)
	return r
}

// BackgroundRemovalMask builds the style-anchor isolation mask: a single
// centered ellipse preserving the character silhouette while everything
// around it is opened for background replacement.
func BackgroundRemovalMask() *Raster {
	r := NewRaster(CharacterMaskSize, CharacterMaskSize, shadeEditable)

	const (
		cx, cy = CharacterMaskSize / 2, 532
		rx, ry = 338, 430
	)
	r.FillEllipse(cx, cy, rx, ry, shadePreserve)
	r.StrokeEllipse(cx, cy, rx, ry, boundaryStrokeWidth, shadeBoundary)
	return r
}

// SceneMask builds the scene-detail inpainting mask for a 1536×1024 page.
//
// The canvas starts fully editable; preserve paint then covers:
//   - the narration bounding box expanded by NarrationMargin, protecting
//     already-rendered caption text
//   - the character half of the canvas (left or right PanelWidth), inset by
//     PanelInset so only a thin border strip of that half stays editable
//   - the central GutterWidth spine strip between the panels
//
// The net effect is deliberate: only small top and bottom bands and narrow
// side margins remain open, keeping generated embellishment minimal and away
// from text and character identity.
//
// Optional zones are editable guarantees for advanced placement (decorative
// words). A zone is carved back open after preserve painting, but preserve
// regions always win: the narration box, character panel, and gutter are
// repainted over any overlapping zone.
func SceneMask(pos CharacterPosition, narrationBounds Rect, zones ...Rect) (*Raster, error) {
	if pos != PositionLeft && pos != PositionRight {
		return nil, errors.New(errors.ErrCodeInvalidInput, "character position must be left or right, got %q", pos)
	}

	r := NewRaster(SceneMaskWidth, SceneMaskHeight, shadeEditable)

	narration := narrationBounds.Expand(NarrationMargin)
	panel := characterPanel(pos).Inset(PanelInset)
	gutter := Rect{
		X: float64(SceneMaskWidth-GutterWidth) / 2,
		Y: 0,
		W: GutterWidth,
		H: SceneMaskHeight,
	}

	paintPreserve := func() {
		r.FillRect(narration.X, narration.Y, narration.W, narration.H, shadePreserve)
		r.FillRect(panel.X, panel.Y, panel.W, panel.H, shadePreserve)
		r.FillRect(gutter.X, gutter.Y, gutter.W, gutter.H, shadePreserve)
	}

	paintPreserve()
	if len(zones) > 0 {
		for _, z := range zones {
			r.FillRect(z.X, z.Y, z.W, z.H, shadeEditable)
		}
		paintPreserve()
	}

	return r, nil
}

// characterPanel returns the un-inset character half of the scene canvas.
func characterPanel(pos CharacterPosition) Rect {
	if pos == PositionLeft {
		return Rect{X: 0, Y: 0, W: PanelWidth, H: SceneMaskHeight}
	}
	return Rect{X: SceneMaskWidth - PanelWidth, Y: 0, W: PanelWidth, H: SceneMaskHeight}
}

// Default detail-zone geometry on the 1536×1024 canvas.
const (
	topBandHeight    = 120
	bottomBandY      = 900
	bottomBandHeight = 124
	cornerZoneWidth  = 200
	cornerZoneHeight = 80
)

// DetailZones lists the default editable zones for decorative placement on a
// page. Output varies with page parity — corner accents swap sides between
// even and odd pages — so embellishment does not land identically on every
// page of a book.
func DetailZones(pageNumber int) []Rect {
	zones := []Rect{
		{X: 0, Y: 0, W: SceneMaskWidth, H: topBandHeight},
		{X: 0, Y: bottomBandY, W: SceneMaskWidth, H: bottomBandHeight},
	}

	left := Rect{X: 0, Y: 0, W: cornerZoneWidth, H: cornerZoneHeight}
	right := Rect{X: SceneMaskWidth - cornerZoneWidth, Y: 0, W: cornerZoneWidth, H: cornerZoneHeight}
	lowLeft := Rect{X: 0, Y: SceneMaskHeight - cornerZoneHeight, W: cornerZoneWidth, H: cornerZoneHeight}
	lowRight := Rect{X: SceneMaskWidth - cornerZoneWidth, Y: SceneMaskHeight - cornerZoneHeight, W: cornerZoneWidth, H: cornerZoneHeight}

	// Diagonal corner pairs alternate with page parity.
	if pageNumber%2 == 0 {
		zones = append(zones, left, lowRight)
	} else {
		zones = append(zones, right, lowLeft)
	}
	return zones
}
