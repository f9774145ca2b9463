// Package spread groups laid-out pages into display-ready spreads.
//
// Two models are supported. The simple landscape model maps every page to
// its own spread — that is what the print export consumes. The paired model
// groups consecutive page pairs into open-book spreads for the preview
// viewer, deciding where the character panel sits on each spread.
package spread

import (
	"slices"

	"github.com/foldline/storypress/pkg/book"
	"github.com/foldline/storypress/pkg/layout"
	"github.com/foldline/storypress/pkg/mask"
)

// CharacterPlacement says where the character panel sits on a spread.
type CharacterPlacement string

// Character placements. Left and right alternate by spread index; center is
// the "big reveal" treatment for opening and closing scenes.
const (
	PlacementLeft   CharacterPlacement = "left"
	PlacementRight  CharacterPlacement = "right"
	PlacementCenter CharacterPlacement = "center"
)

// MaskPosition converts a placement into the scene-mask position argument.
// Centered spreads use the left half for the mask's character panel.
func (p CharacterPlacement) MaskPosition() mask.CharacterPosition {
	if p == PlacementRight {
		return mask.PositionRight
	}
	return mask.PositionLeft
}

// Spread is one open-book view: a left and right page laid out together.
// RightPage is nil on the final spread of an odd-length book.
type Spread struct {
	SpreadNumber       int                `json:"spread_number" bson:"spread_number"`
	LeftPage           *layout.PageLayout `json:"left_page,omitempty" bson:"left_page,omitempty"`
	RightPage          *layout.PageLayout `json:"right_page,omitempty" bson:"right_page,omitempty"`
	CharacterPlacement CharacterPlacement `json:"character_placement" bson:"character_placement"`
}

// PageSpread is one entry of the simplified landscape model: a single page
// with its narration and illustration reference. IllustrationURL is "" when
// the page has not been illustrated yet — spreads stay displayable in a
// partially illustrated state.
type PageSpread struct {
	SpreadNumber    int    `json:"spread_number" bson:"spread_number"`
	PageNumber      int    `json:"page_number" bson:"page_number"`
	Narration       string `json:"narration" bson:"narration"`
	IllustrationURL string `json:"illustration_url,omitempty" bson:"illustration_url,omitempty"`
}

// BuildPageSpreads maps each page to exactly one spread entry (the simplified
// landscape model). Illustration lookup misses yield empty image references,
// never an error.
func BuildPageSpreads(pages []book.Page, ills book.Illustrations) []PageSpread {
	sorted := sortedPages(pages)

	spreads := make([]PageSpread, 0, len(sorted))
	for i, p := range sorted {
		spreads = append(spreads, PageSpread{
			SpreadNumber:    i + 1,
			PageNumber:      p.PageNumber,
			Narration:       p.Narration,
			IllustrationURL: ills.URLForPage(p.PageNumber),
		})
	}
	return spreads
}

// Builder constructs paired spreads from laid-out pages.
// LayoutForPage supplies the page layout; a nil return is tolerated and
// leaves that side of the spread empty.
type Builder struct {
	BookID        string
	LayoutForPage func(p book.Page, illustrationURL string) *layout.PageLayout
}

// NewBuilder creates a paired-spread builder that lays out each page with a
// fresh engine keyed to (bookID, pageNumber).
func NewBuilder(bookID string) *Builder {
	return &Builder{
		BookID: bookID,
		LayoutForPage: func(p book.Page, illustrationURL string) *layout.PageLayout {
			eng := layout.NewEngine(bookID, p.PageNumber)
			l := eng.GenerateLayout(p.Template, p.Narration, illustrationURL)
			return &l
		},
	}
}

// BuildSpreads groups pages two at a time into open-book spreads.
//
// Pages are sorted by page number first — the only cross-page ordering
// requirement in the whole engine. For N pages the result has ceil(N/2)
// spreads, and the last spread's right page is nil iff N is odd.
func (b *Builder) BuildSpreads(pages []book.Page, ills book.Illustrations) []Spread {
	sorted := sortedPages(pages)

	spreads := make([]Spread, 0, (len(sorted)+1)/2)
	for i := 0; i < len(sorted); i += 2 {
		left := &sorted[i]
		var right *book.Page
		if i+1 < len(sorted) {
			right = &sorted[i+1]
		}

		s := Spread{
			SpreadNumber:       len(spreads) + 1,
			LeftPage:           b.layoutFor(left, ills),
			CharacterPlacement: placementFor(len(spreads), left, right),
		}
		if right != nil {
			s.RightPage = b.layoutFor(right, ills)
		}
		spreads = append(spreads, s)
	}
	return spreads
}

// layoutFor lays out one page, tolerating a missing illustration.
func (b *Builder) layoutFor(p *book.Page, ills book.Illustrations) *layout.PageLayout {
	if p == nil {
		return nil
	}
	return b.LayoutForPage(*p, ills.URLForPage(p.PageNumber))
}

// placementFor computes the character placement for one spread.
//
// Placement alternates left/right by spread index, but an opening scene on
// either adjacent page centers the spread (the book's first reveal), as does
// a closing scene (the final reveal). The left page is checked first.
func placementFor(spreadIdx int, left, right *book.Page) CharacterPlacement {
	for _, p := range []*book.Page{left, right} {
		if p == nil {
			continue
		}
		if p.SceneType == book.SceneOpening || p.SceneType == book.SceneClosing {
			return PlacementCenter
		}
	}
	if spreadIdx%2 == 0 {
		return PlacementLeft
	}
	return PlacementRight
}

// sortedPages returns pages ordered by page number without mutating input.
func sortedPages(pages []book.Page) []book.Page {
	sorted := slices.Clone(pages)
	slices.SortFunc(sorted, func(a, b book.Page) int {
		return a.PageNumber - b.PageNumber
	})
	return sorted
}
