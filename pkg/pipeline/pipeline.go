// Package pipeline provides the core layout pipeline for storypress.
//
// This package implements the complete layout → spread → mask → render flow
// that can be used by CLI and preview-server components. By centralizing
// this logic, we ensure consistent behavior across all entry points.
//
// The pipeline consists of four stages:
//
//  1. Layout: place each page's content on its canvas, deterministically
//  2. Spreads: group laid-out pages into display spreads
//  3. Masks: synthesize scene-inpainting masks for illustrated pages
//  4. Render: export layouts in the requested formats (JSON, PNG)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each is cache-keyed by its inputs so repeated runs are cheap.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    BookID:        "b1",
//	    Story:         story,
//	    Illustrations: ills,
//	    Formats:       []string{"json"},
//	}
//	result, err := runner.Execute(ctx, opts)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/foldline/storypress/pkg/book"
	"github.com/foldline/storypress/pkg/cache"
	"github.com/foldline/storypress/pkg/errors"
	"github.com/foldline/storypress/pkg/layout"
	"github.com/foldline/storypress/pkg/mask"
	"github.com/foldline/storypress/pkg/spread"
)

// Defaults - single source of truth for CLI and server.
const (
	// DefaultConcurrency bounds parallel per-page work. Pages share no
	// state, so this is purely a CPU/memory throttle.
	DefaultConcurrency = 4

	// DefaultPreviewScale is the PNG preview scale factor.
	DefaultPreviewScale = 0.5
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatPNG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for preview-server requests.
type Options struct {
	// Inputs
	BookID        string             `json:"book_id"`
	Story         *book.Story        `json:"story"`
	Illustrations book.Illustrations `json:"illustrations,omitempty"`

	// Spread options
	Paired bool `json:"paired,omitempty"` // paired open-book model instead of 1:1 landscape

	// Mask options
	SceneMasks bool `json:"scene_masks,omitempty"` // generate scene-inpainting masks per page

	// Render options
	Formats      []string `json:"formats,omitempty"`
	PreviewScale float64  `json:"preview_scale,omitempty"`
	ShowGuides   bool     `json:"show_guides,omitempty"`

	// Runtime options (not serialized)
	Concurrency int         `json:"-"`
	Logger      *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layouts maps page number to its generated layout.
	Layouts map[int]layout.PageLayout

	// Collisions maps page number to the advisory collision-check result.
	Collisions map[int]bool

	// Spreads is the paired open-book model (when Paired).
	Spreads []spread.Spread

	// PageSpreads is the simplified landscape model (when !Paired).
	PageSpreads []spread.PageSpread

	// SceneMasks maps page number to its scene-inpainting mask PNG.
	SceneMasks map[int][]byte

	// Artifacts maps page number to rendered outputs keyed by format.
	Artifacts map[int]map[string][]byte

	// StoryHash is the content hash of the story input.
	StoryHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks cache hits per stage.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PageCount   int
	SpreadCount int
	LayoutTime  time.Duration
	SpreadTime  time.Duration
	MaskTime    time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHits   int
	SpreadHits   int
	MaskHits     int
	ArtifactHits int
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it twice has the effect of calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if err := errors.ValidateBookID(o.BookID); err != nil {
		return err
	}
	if o.Story == nil || len(o.Story.Pages) == 0 {
		return errors.New(errors.ErrCodeInvalidStory, "story with at least one page is required")
	}
	if err := o.Story.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStory, err, "story pages out of order")
	}
	for _, p := range o.Story.Pages {
		if err := errors.ValidateTemplateName(p.Template); err != nil {
			return err
		}
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.PreviewScale == 0 {
		o.PreviewScale = DefaultPreviewScale
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}

	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for one page's layout.
func (o *Options) LayoutKeyOpts(p book.Page) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Template:        p.Template,
		Narration:       p.Narration,
		IllustrationURL: o.Illustrations.URLForPage(p.PageNumber),
	}
}

// MaskKeyOpts returns cache key options for one page's scene mask.
func (o *Options) MaskKeyOpts(pageNumber int, pos mask.CharacterPosition) cache.MaskKeyOpts {
	return cache.MaskKeyOpts{
		Kind:       "scene",
		Position:   string(pos),
		PageNumber: pageNumber,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	scale := 0.0
	if format == FormatPNG {
		scale = o.PreviewScale
	}
	return cache.ArtifactKeyOpts{Format: format, Scale: scale}
}
