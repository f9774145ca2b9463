// Package book defines the story-side data model consumed by the layout,
// spread, and mask engines.
//
// A Story is an ordered sequence of Pages, each carrying narration text and
// the visual metadata (scene type, action, camera angle, characters) that
// drives template selection, spread placement, and mask policy. Illustrations
// are generated externally and associated with pages by page number.
//
// The surrounding application owns and mutates these collections; the engines
// in this module only read them and always return newly constructed values.
package book

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// SceneType classifies a page's narrative role.
// Opening and closing scenes trigger the centered "big reveal" spread treatment.
type SceneType string

// Scene types.
const (
	SceneOpening SceneType = "opening"
	SceneAction  SceneType = "action"
	SceneClosing SceneType = "closing"
)

// CharacterID identifies a recurring character across a book's pages.
type CharacterID string

// Page is a single storybook page: narration plus the visual metadata an
// illustration was (or will be) generated from.
type Page struct {
	PageNumber   int           `json:"page_number" bson:"page_number"`
	Narration    string        `json:"narration" bson:"narration"`
	SceneType    SceneType     `json:"scene_type,omitempty" bson:"scene_type,omitempty"`
	VisualAction string        `json:"visual_action,omitempty" bson:"visual_action,omitempty"`
	CameraAngle  string        `json:"camera_angle,omitempty" bson:"camera_angle,omitempty"`
	Characters   []CharacterID `json:"characters_on_page,omitempty" bson:"characters_on_page,omitempty"`
	Template     string        `json:"layout_template,omitempty" bson:"layout_template,omitempty"`
}

// HasCharacters reports whether any character appears on this page.
// Pages without characters get no character slot in their spread.
func (p *Page) HasCharacters() bool {
	return len(p.Characters) > 0
}

// Story is an ordered sequence of pages with a book identity.
// Page numbers are 1-indexed, unique, and contiguous.
type Story struct {
	BookID string `json:"book_id" bson:"book_id"`
	Title  string `json:"title,omitempty" bson:"title,omitempty"`
	Pages  []Page `json:"pages" bson:"pages"`
}

// Validate checks the page-ordering invariant: page numbers must be unique,
// 1-indexed, and contiguous in sequence order.
func (s *Story) Validate() error {
	for i, p := range s.Pages {
		if p.PageNumber != i+1 {
			return fmt.Errorf("page at index %d has page_number %d, want %d", i, p.PageNumber, i+1)
		}
	}
	return nil
}

// SortPages orders pages by page number. Spread building requires sorted
// pages; callers holding pages from an unordered source should sort first.
func (s *Story) SortPages() {
	slices.SortFunc(s.Pages, func(a, b Page) int {
		return a.PageNumber - b.PageNumber
	})
}

// PageByNumber returns the page with the given number, or nil.
func (s *Story) PageByNumber(n int) *Page {
	for i := range s.Pages {
		if s.Pages[i].PageNumber == n {
			return &s.Pages[i]
		}
	}
	return nil
}

// Illustration is an externally generated image associated with one page.
// URL is an opaque reference (remote URL, data URI, or file path) — the
// engines never dereference it.
type Illustration struct {
	PageNumber int    `json:"page_number" bson:"page_number"`
	URL        string `json:"url" bson:"url"`
	Style      string `json:"style,omitempty" bson:"style,omitempty"`
	Seed       int64  `json:"seed,omitempty" bson:"seed,omitempty"`
}

// Illustrations is the page-keyed illustration set.
// At most one illustration per page number; lookup is by equality, not order.
type Illustrations []Illustration

// ForPage returns the illustration for the given page number, or nil when the
// page has not been illustrated yet. A miss is an expected state, not an
// error: spreads and layouts must remain displayable partially illustrated.
func (ills Illustrations) ForPage(n int) *Illustration {
	for i := range ills {
		if ills[i].PageNumber == n {
			return &ills[i]
		}
	}
	return nil
}

// URLForPage returns the illustration URL for a page, or "" on a lookup miss.
func (ills Illustrations) URLForPage(n int) string {
	if ill := ills.ForPage(n); ill != nil {
		return ill.URL
	}
	return ""
}

// UnmarshalStory deserializes JSON bytes into a Story and validates ordering.
func UnmarshalStory(data []byte) (*Story, error) {
	var s Story
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal story: %w", err)
	}
	s.SortPages()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid story: %w", err)
	}
	return &s, nil
}

// MarshalStory serializes a Story to pretty-printed JSON bytes.
func MarshalStory(s *Story) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// stillness and movement keyword sets for action classification.
// These drive the character-mask preserve-level policy: still poses tolerate
// a conservative preserve region, large movements need pose-edit freedom.
var (
	stillKeywords    = []string{"sleep", "rest", "portrait", "sit", "cuddle"}
	// Stems, not words: "danc" covers both "dance" and "dancing".
	movementKeywords = []string{"reach", "crawl", "walk", "jump", "play", "danc", "run", "climb"}
)

// ActionClass is the coarse movement classification of a visual action.
type ActionClass int

// Action classes, from least to most body movement.
const (
	ActionStill ActionClass = iota
	ActionNeutral
	ActionMoving
)

// ClassifyAction scans a visual-action description for movement keywords.
// Unrecognized actions are neutral.
func ClassifyAction(action string) ActionClass {
	a := strings.ToLower(action)
	for _, kw := range stillKeywords {
		if strings.Contains(a, kw) {
			return ActionStill
		}
	}
	for _, kw := range movementKeywords {
		if strings.Contains(a, kw) {
			return ActionMoving
		}
	}
	return ActionNeutral
}
