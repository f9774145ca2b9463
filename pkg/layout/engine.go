// Package layout places storybook content onto fixed-size print canvases.
//
// The engine resolves a named template from the catalog and positions its
// image slot and text frame with small seeded perturbations ("jitter") so
// pages feel hand-arranged without losing reproducibility: the RNG is keyed
// by (bookID, pageNumber), draws happen in a fixed order, and identical
// inputs always produce byte-identical layouts.
//
// Collision checking is advisory. The engine never retries internally —
// determinism means a second run cannot land elsewhere. Callers wanting a
// different result vary the seed key or pick another template.
package layout

import "slices"

// Engine generates deterministic page layouts for one page of one book.
//
// An Engine owns one RNG keyed to its page; it is cheap to construct and not
// safe for concurrent use. Lay out different pages with different engines —
// they share nothing.
type Engine struct {
	bookID     string
	pageNumber int
	seed       int64
	rng        *RNG
}

// NewEngine creates an engine keyed to one (bookID, pageNumber) pair.
func NewEngine(bookID string, pageNumber int) *Engine {
	return &Engine{
		bookID:     bookID,
		pageNumber: pageNumber,
		seed:       Seed(bookID, pageNumber),
		rng:        NewRNG(bookID, pageNumber),
	}
}

// GenerateLayout resolves the named template and places content on it.
//
// Missing content degrades gracefully: no illustration URL means no image
// element, empty narration means no text element. Neither is an error — the
// page proceeds with fewer elements and rendering tolerates partial layouts.
//
// Elements are returned sorted ascending by z-index.
func (e *Engine) GenerateLayout(templateName, narration, illustrationURL string) PageLayout {
	t := ResolveTemplate(templateName)

	l := PageLayout{
		PageNumber: e.pageNumber,
		Template:   t.Name,
		Canvas:     t.Canvas,
		Seed:       e.seed,
	}

	// Image slot before text frame: the draw order is part of the layout
	// contract, not an implementation preference.
	if illustrationURL != "" && len(t.ImageSlots) > 0 {
		l.Elements = append(l.Elements, e.placeImage(t.ImageSlots[0], t.Canvas, illustrationURL))
	}
	if narration != "" && len(t.TextFrames) > 0 {
		l.Elements = append(l.Elements, e.placeText(t.TextFrames[0], t.Canvas, narration))
	}

	slices.SortStableFunc(l.Elements, func(a, b Element) int {
		return a.ZIndex - b.ZIndex
	})
	return l
}

// placeImage resolves an image slot into an absolute-pixel element.
func (e *Engine) placeImage(slot ImageSlot, c Canvas, url string) Element {
	d := slot.Jitter.drawImage(e.rng)
	w := float64(c.WidthPx)
	h := float64(c.HeightPx)

	return Element{
		Type:     ElementImage,
		ID:       slot.ID,
		X:        (slot.Anchor.X + d.dx) * w,
		Y:        (slot.Anchor.Y + d.dy) * h,
		Width:    slot.Size.W * w * d.scale,
		Height:   slot.Size.H * h * d.scale,
		Rotation: d.rotation,
		ZIndex:   slot.ZIndex,
		URL:      url,
	}
}

// placeText resolves a text frame into an absolute-pixel element.
func (e *Engine) placeText(frame TextFrame, c Canvas, narration string) Element {
	d := frame.Jitter.drawText(e.rng)
	w := float64(c.WidthPx)
	h := float64(c.HeightPx)
	style := frame.Style

	return Element{
		Type:     ElementText,
		ID:       frame.ID,
		X:        (frame.Anchor.X + d.dx) * w,
		Y:        (frame.Anchor.Y + d.dy) * h,
		Width:    frame.Size.W * w,
		Height:   frame.Size.H * h,
		Rotation: d.rotation,
		ZIndex:   frame.ZIndex,
		Content:  narration,
		Style:    &style,
	}
}
