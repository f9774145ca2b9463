package layout

// Canvas describes the absolute pixel geometry of a print page.
// Print canvases are specified in pixels at a fixed DPI with explicit bleed
// and margin so the export step can map elements without unit conversion.
type Canvas struct {
	WidthPx  int `json:"width_px" bson:"width_px" toml:"width_px"`
	HeightPx int `json:"height_px" bson:"height_px" toml:"height_px"`
	DPI      int `json:"dpi" bson:"dpi" toml:"dpi"`
	BleedPx  int `json:"bleed_px" bson:"bleed_px" toml:"bleed_px"`
	MarginPx int `json:"margin_px" bson:"margin_px" toml:"margin_px"`
}

// Anchor is a normalized position in [0,1]² relative to the canvas.
// It marks the center of the element placed at it.
type Anchor struct {
	X float64 `json:"x" bson:"x" toml:"x"`
	Y float64 `json:"y" bson:"y" toml:"y"`
}

// SlotSize is a normalized element size relative to canvas dimensions.
type SlotSize struct {
	W float64 `json:"w" bson:"w" toml:"w"`
	H float64 `json:"h" bson:"h" toml:"h"`
}

// ImageSlot is a template position for one illustration.
type ImageSlot struct {
	ID     string   `json:"id" bson:"id" toml:"id"`
	Anchor Anchor   `json:"anchor" bson:"anchor" toml:"anchor"`
	Size   SlotSize `json:"size" bson:"size" toml:"size"`
	ZIndex int      `json:"z_index" bson:"z_index" toml:"z_index"`
	Jitter Jitter   `json:"jitter" bson:"jitter" toml:"jitter"`
}

// TextStyle carries the caption typography a text frame was authored with.
type TextStyle struct {
	Font       string  `json:"font,omitempty" bson:"font,omitempty" toml:"font"`
	SizePx     float64 `json:"size_px,omitempty" bson:"size_px,omitempty" toml:"size_px"`
	Align      string  `json:"align,omitempty" bson:"align,omitempty" toml:"align"`
	Color      string  `json:"color,omitempty" bson:"color,omitempty" toml:"color"`
	LineHeight float64 `json:"line_height,omitempty" bson:"line_height,omitempty" toml:"line_height"`
}

// TextFrame is a template position for the narration caption.
// Text frames jitter in translation and rotation only.
type TextFrame struct {
	ID     string    `json:"id" bson:"id" toml:"id"`
	Anchor Anchor    `json:"anchor" bson:"anchor" toml:"anchor"`
	Size   SlotSize  `json:"size" bson:"size" toml:"size"`
	ZIndex int       `json:"z_index" bson:"z_index" toml:"z_index"`
	Style  TextStyle `json:"style" bson:"style" toml:"style"`
	Jitter Jitter    `json:"jitter" bson:"jitter" toml:"jitter"`
}

// LayoutTemplate is one named, immutable catalog entry.
// Templates are pure data: adding one is a catalog edit, never an engine change.
type LayoutTemplate struct {
	Name       string      `json:"name" bson:"name" toml:"-"`
	Canvas     Canvas      `json:"canvas" bson:"canvas" toml:"canvas"`
	ImageSlots []ImageSlot `json:"image_slots" bson:"image_slots" toml:"image_slots"`
	TextFrames []TextFrame `json:"text_frames" bson:"text_frames" toml:"text_frames"`
}
