package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// ElementType discriminates the element union.
type ElementType string

// Element types.
const (
	ElementImage      ElementType = "image"
	ElementText       ElementType = "text"
	ElementDecoration ElementType = "decoration" // deprecated, removed by the sanitizer
)

// TextPlaqueID is the one decoration the sanitizer keeps, reclassified as text.
const TextPlaqueID = "text_plaque"

// Element is one positioned item on a page canvas.
//
// This is a discriminated union type - check Type to determine which fields
// are populated:
//
//	Image ("image"):
//	  - URL: opaque illustration reference
//
//	Text ("text"):
//	  - Content: narration string
//	  - Style: caption typography
//
// Shared fields: position and size are absolute pixels with X,Y at the
// element center; Rotation is degrees; ZIndex orders painting.
//
// Opacity and Decorations only appear in persisted layouts written by older
// releases; the sanitizer strips them before anything else consumes the data.
type Element struct {
	// Discriminator
	Type ElementType `json:"type" bson:"type"`

	ID       string  `json:"id" bson:"id"`
	X        float64 `json:"x" bson:"x"`
	Y        float64 `json:"y" bson:"y"`
	Width    float64 `json:"width" bson:"width"`
	Height   float64 `json:"height" bson:"height"`
	Rotation float64 `json:"rotation_deg,omitempty" bson:"rotation_deg,omitempty"`
	ZIndex   int     `json:"z_index" bson:"z_index"`

	// Image-specific
	URL string `json:"url,omitempty" bson:"url,omitempty"`

	// Text-specific
	Content string     `json:"content,omitempty" bson:"content,omitempty"`
	Style   *TextStyle `json:"style,omitempty" bson:"style,omitempty"`

	// Deprecated fields, present only in stored layouts from older releases.
	Opacity     float64           `json:"opacity,omitempty" bson:"opacity,omitempty"`
	Decorations []json.RawMessage `json:"decorations,omitempty" bson:"decorations,omitempty"`
}

// IsImage returns true if this is an image element.
func (e *Element) IsImage() bool { return e.Type == ElementImage }

// IsText returns true if this is a text element.
func (e *Element) IsText() bool { return e.Type == ElementText }

// IsDecoration returns true if this is a deprecated decoration element.
func (e *Element) IsDecoration() bool { return e.Type == ElementDecoration }

// PageLayout is the resolved placement of one page's content on its canvas.
// It is derived data: recomputed on demand from (bookID, pageNumber,
// template, narration, illustration) and never the system of record.
type PageLayout struct {
	PageNumber int       `json:"page_number" bson:"page_number"`
	Template   string    `json:"template" bson:"template"`
	Canvas     Canvas    `json:"canvas" bson:"canvas"`
	Seed       int64     `json:"seed" bson:"seed"`
	Elements   []Element `json:"elements" bson:"elements"`

	// Deprecated root-level field from older releases; stripped by the sanitizer.
	Decorations []json.RawMessage `json:"decorations,omitempty" bson:"decorations,omitempty"`
}

// MarshalLayout serializes a PageLayout to pretty-printed JSON bytes.
func MarshalLayout(l PageLayout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a PageLayout.
// Validates that the canvas has usable dimensions.
func UnmarshalLayout(data []byte) (PageLayout, error) {
	var l PageLayout
	if err := json.Unmarshal(data, &l); err != nil {
		return PageLayout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Canvas.WidthPx <= 0 || l.Canvas.HeightPx <= 0 {
		return PageLayout{}, fmt.Errorf("layout canvas must have positive dimensions")
	}
	return l, nil
}

// WriteLayoutFile writes a PageLayout to a JSON file.
func WriteLayoutFile(l PageLayout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a PageLayout from a JSON file.
func ReadLayoutFile(path string) (PageLayout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PageLayout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
