package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/foldline/storypress/pkg/book"
	"github.com/foldline/storypress/pkg/cache"
	"github.com/foldline/storypress/pkg/errors"
	"github.com/foldline/storypress/pkg/layout"
	"github.com/foldline/storypress/pkg/mask"
	"github.com/foldline/storypress/pkg/observability"
	"github.com/foldline/storypress/pkg/render/sink"
	"github.com/foldline/storypress/pkg/spread"
)

// Runner executes the layout pipeline with injected dependencies.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	mu   sync.Mutex // guards cacheInfo counters across page goroutines
	info CacheInfo
}

// NewRunner creates a pipeline runner. A nil cache disables caching and a
// nil keyer uses the default key scheme.
func NewRunner(c cache.Cache, k cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: k, Logger: logger}
}

// Execute runs the full pipeline: layout, spreads, masks, render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	storyJSON, err := book.MarshalStory(opts.Story)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStory, err, "serialize story")
	}

	result := &Result{
		Layouts:    make(map[int]layout.PageLayout, len(opts.Story.Pages)),
		Collisions: make(map[int]bool, len(opts.Story.Pages)),
		StoryHash:  cache.Hash(storyJSON),
	}
	r.mu.Lock()
	r.info = CacheInfo{}
	r.mu.Unlock()

	if err := r.runLayoutStage(ctx, &opts, result); err != nil {
		return nil, err
	}
	if err := r.runSpreadStage(ctx, &opts, result); err != nil {
		return nil, err
	}
	if opts.SceneMasks {
		if err := r.runMaskStage(ctx, &opts, result); err != nil {
			return nil, err
		}
	}
	if err := r.runRenderStage(ctx, &opts, result); err != nil {
		return nil, err
	}

	result.Stats.PageCount = len(result.Layouts)
	r.mu.Lock()
	result.CacheInfo = r.info
	r.mu.Unlock()

	opts.Logger.Debug("pipeline complete",
		"book", opts.BookID,
		"pages", result.Stats.PageCount,
		"spreads", result.Stats.SpreadCount,
		"layout_hits", result.CacheInfo.LayoutHits)
	return result, nil
}

// runLayoutStage lays out every page, in parallel. Pages are independent of
// each other so the only shared state is the result maps.
func (r *Runner) runLayoutStage(ctx context.Context, opts *Options, result *Result) error {
	start := time.Now()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, p := range opts.Story.Pages {
		p := p
		g.Go(func() error {
			l, collided, err := r.layoutPage(gctx, opts, p)
			if err != nil {
				return err
			}
			mu.Lock()
			result.Layouts[p.PageNumber] = l
			result.Collisions[p.PageNumber] = collided
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	result.Stats.LayoutTime = time.Since(start)
	return nil
}

// layoutPage produces one page's layout, consulting the cache first.
// The collision check is advisory and runs on cache hits too, so a cached
// layout reports the same flag as a fresh one.
func (r *Runner) layoutPage(ctx context.Context, opts *Options, p book.Page) (layout.PageLayout, bool, error) {
	pageStart := time.Now()
	observability.Layout().OnLayoutStart(ctx, opts.BookID, p.PageNumber)

	key := r.Keyer.LayoutKey(opts.BookID, p.PageNumber, opts.LayoutKeyOpts(p))
	if data, ok := r.cacheGet(ctx, "layout", key); ok {
		if l, err := layout.UnmarshalLayout(data); err == nil {
			collided := layout.CheckCollisions(l)
			observability.Layout().OnLayoutComplete(ctx, opts.BookID, p.PageNumber, collided, time.Since(pageStart))
			return l, collided, nil
		}
		// Corrupt entry: fall through and regenerate.
		_ = r.Cache.Delete(ctx, key)
	}

	eng := layout.NewEngine(opts.BookID, p.PageNumber)
	l := eng.GenerateLayout(p.Template, p.Narration, opts.Illustrations.URLForPage(p.PageNumber))
	collided := layout.CheckCollisions(l)
	if collided {
		opts.Logger.Warn("layout collision", "book", opts.BookID, "page", p.PageNumber, "template", l.Template)
	}

	if data, err := layout.MarshalLayout(l); err == nil {
		r.cacheSet(ctx, "layout", key, data, cache.TTLLayout)
	}

	observability.Layout().OnLayoutComplete(ctx, opts.BookID, p.PageNumber, collided, time.Since(pageStart))
	return l, collided, nil
}

// runSpreadStage groups the laid-out pages into spreads. The paired builder
// reuses the layouts computed in the layout stage instead of regenerating.
// The whole build is one cache entry keyed by story and illustration content.
func (r *Runner) runSpreadStage(ctx context.Context, opts *Options, result *Result) error {
	start := time.Now()

	key := r.Keyer.SpreadKey(result.StoryHash, cache.SpreadKeyOpts{
		Paired:            opts.Paired,
		PageCount:         len(opts.Story.Pages),
		IllustrationsHash: illustrationsHash(opts.Illustrations),
	})
	if data, ok := r.cacheGet(ctx, "spread", key); ok {
		if restoreSpreads(opts.Paired, data, result) {
			result.Stats.SpreadTime = time.Since(start)
			observability.Layout().OnSpreadsBuilt(ctx, opts.BookID, result.Stats.SpreadCount, result.Stats.SpreadTime)
			return nil
		}
		// Corrupt entry: fall through and rebuild.
		_ = r.Cache.Delete(ctx, key)
	}

	if opts.Paired {
		b := spread.NewBuilder(opts.BookID)
		b.LayoutForPage = func(p book.Page, _ string) *layout.PageLayout {
			if l, ok := result.Layouts[p.PageNumber]; ok {
				return &l
			}
			return nil
		}
		result.Spreads = b.BuildSpreads(opts.Story.Pages, opts.Illustrations)
		result.Stats.SpreadCount = len(result.Spreads)
		if data, err := json.Marshal(result.Spreads); err == nil {
			r.cacheSet(ctx, "spread", key, data, cache.TTLSpread)
		}
	} else {
		result.PageSpreads = spread.BuildPageSpreads(opts.Story.Pages, opts.Illustrations)
		result.Stats.SpreadCount = len(result.PageSpreads)
		if data, err := json.Marshal(result.PageSpreads); err == nil {
			r.cacheSet(ctx, "spread", key, data, cache.TTLSpread)
		}
	}

	result.Stats.SpreadTime = time.Since(start)
	observability.Layout().OnSpreadsBuilt(ctx, opts.BookID, result.Stats.SpreadCount, result.Stats.SpreadTime)
	return nil
}

// restoreSpreads decodes a cached spread build into the result.
// Reports false on a corrupt entry so the caller rebuilds.
func restoreSpreads(paired bool, data []byte, result *Result) bool {
	if paired {
		var spreads []spread.Spread
		if json.Unmarshal(data, &spreads) != nil || spreads == nil {
			return false
		}
		result.Spreads = spreads
		result.Stats.SpreadCount = len(spreads)
		return true
	}
	var pages []spread.PageSpread
	if json.Unmarshal(data, &pages) != nil || pages == nil {
		return false
	}
	result.PageSpreads = pages
	result.Stats.SpreadCount = len(pages)
	return true
}

// illustrationsHash fingerprints the illustration manifest for cache keys.
func illustrationsHash(ills book.Illustrations) string {
	if len(ills) == 0 {
		return ""
	}
	data, err := json.Marshal(ills)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// runMaskStage synthesizes a scene-inpainting mask per page.
func (r *Runner) runMaskStage(ctx context.Context, opts *Options, result *Result) error {
	start := time.Now()
	positions := r.maskPositions(opts, result)

	var mu sync.Mutex
	masks := make(map[int][]byte, len(result.Layouts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for page, l := range result.Layouts {
		page, l := page, l
		g.Go(func() error {
			data, err := r.sceneMask(gctx, opts, page, l, positions[page])
			if err != nil {
				return err
			}
			mu.Lock()
			masks[page] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	result.SceneMasks = masks
	result.Stats.MaskTime = time.Since(start)
	return nil
}

// maskPositions resolves the character-panel side for every page. Paired
// spreads dictate the side; the landscape model alternates by page parity.
func (r *Runner) maskPositions(opts *Options, result *Result) map[int]mask.CharacterPosition {
	positions := make(map[int]mask.CharacterPosition, len(result.Layouts))
	if opts.Paired {
		for _, s := range result.Spreads {
			pos := s.CharacterPlacement.MaskPosition()
			if s.LeftPage != nil {
				positions[s.LeftPage.PageNumber] = pos
			}
			if s.RightPage != nil {
				positions[s.RightPage.PageNumber] = pos
			}
		}
		return positions
	}
	for page := range result.Layouts {
		if page%2 == 1 {
			positions[page] = mask.PositionLeft
		} else {
			positions[page] = mask.PositionRight
		}
	}
	return positions
}

// sceneMask generates (or fetches) one page's scene mask PNG.
func (r *Runner) sceneMask(ctx context.Context, opts *Options, page int, l layout.PageLayout, pos mask.CharacterPosition) ([]byte, error) {
	maskStart := time.Now()

	key := r.Keyer.MaskKey(opts.BookID, opts.MaskKeyOpts(page, pos))
	if data, ok := r.cacheGet(ctx, "mask", key); ok {
		return data, nil
	}

	m, err := mask.SceneMask(pos, narrationBounds(l), mask.DetailZones(page)...)
	if err != nil {
		return nil, err
	}
	data, err := m.PNG()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode scene mask for page %d", page)
	}

	r.cacheSet(ctx, "mask", key, data, cache.TTLMask)
	observability.Mask().OnMaskGenerated(ctx, "scene", m.Width(), m.Height(), time.Since(maskStart))
	return data, nil
}

// narrationBounds locates the page's text frame and maps it onto the scene
// mask canvas. Templates and masks use different coordinate spaces, so the
// frame is rescaled; a page without narration protects the default caption
// band along the bottom.
func narrationBounds(l layout.PageLayout) mask.Rect {
	for i := range l.Elements {
		el := &l.Elements[i]
		if !el.IsText() {
			continue
		}
		sx := float64(mask.SceneMaskWidth) / float64(l.Canvas.WidthPx)
		sy := float64(mask.SceneMaskHeight) / float64(l.Canvas.HeightPx)
		return mask.Rect{
			X: (el.X - el.Width/2) * sx,
			Y: (el.Y - el.Height/2) * sy,
			W: el.Width * sx,
			H: el.Height * sy,
		}
	}
	return mask.Rect{X: 268, Y: 800, W: 1000, H: 140}
}

// runRenderStage exports each layout in every requested format.
func (r *Runner) runRenderStage(ctx context.Context, opts *Options, result *Result) error {
	start := time.Now()

	var mu sync.Mutex
	artifacts := make(map[int]map[string][]byte, len(result.Layouts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for page, l := range result.Layouts {
		page, l := page, l
		g.Go(func() error {
			rendered, err := r.renderPage(gctx, opts, l)
			if err != nil {
				return err
			}
			mu.Lock()
			artifacts[page] = rendered
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	return nil
}

// renderPage renders one layout in every requested format, cache-keyed by
// the layout's content hash so edits invalidate stale artifacts.
func (r *Runner) renderPage(ctx context.Context, opts *Options, l layout.PageLayout) (map[string][]byte, error) {
	layoutJSON, err := layout.MarshalLayout(l)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for page %d", l.PageNumber)
	}
	layoutHash := cache.Hash(layoutJSON)

	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, ok := r.cacheGet(ctx, "artifact", key); ok {
			rendered[format] = data
			continue
		}

		var data []byte
		switch format {
		case FormatJSON:
			data = layoutJSON
		case FormatPNG:
			pngOpts := []sink.PNGOption{sink.WithScale(opts.PreviewScale)}
			if opts.ShowGuides {
				pngOpts = append(pngOpts, sink.WithGuides())
			}
			data, err = sink.RenderPNG(l, pngOpts...)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render page %d preview", l.PageNumber)
			}
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
		}

		r.cacheSet(ctx, "artifact", key, data, cache.TTLArtifact)
		rendered[format] = data
	}
	return rendered, nil
}

// cacheGet reads one entry, recording hit/miss in hooks and counters.
// Cache errors degrade to misses; caching never fails the pipeline.
func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache get failed", "type", keyType, "error", err)
		return nil, false
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	r.mu.Lock()
	switch keyType {
	case "layout":
		r.info.LayoutHits++
	case "spread":
		r.info.SpreadHits++
	case "mask":
		r.info.MaskHits++
	case "artifact":
		r.info.ArtifactHits++
	}
	r.mu.Unlock()
	return data, true
}

// cacheSet writes one entry, tolerating backend failures.
func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache set failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// ExecuteSanitize re-sanitizes stored layouts outside the main pipeline.
// It is exposed for the CLI's migration command and the preview server.
func (r *Runner) ExecuteSanitize(layouts map[int]*layout.PageLayout) map[int]layout.PageLayout {
	return layout.SanitizeBookLayouts(layouts, r.Logger)
}

// MarshalResultSpreads serializes the spread model that was actually built.
func MarshalResultSpreads(result *Result) ([]byte, error) {
	if result.Spreads != nil {
		return sink.RenderSpreadsJSON(result.Spreads)
	}
	return sink.RenderPageSpreadsJSON(result.PageSpreads)
}
