package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/foldline/storypress/pkg/book"
	"github.com/foldline/storypress/pkg/pipeline"
)

// composeCommand creates the compose command, the main entry point of the
// layout pipeline.
func (c *CLI) composeCommand() *cobra.Command {
	var (
		bookID        string
		newBook       bool
		illustrations string
		output        string
		formats       string
		noCache       bool
		concurrency   int
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "compose [story.json]",
		Short: "Generate page layouts and render artifacts for a story",
		Long: `Generate page layouts and render artifacts for a story.

The compose command takes a story.json file, lays out every page on its
template's canvas, groups the pages into spreads, and writes the requested
artifacts (layout JSON, preview PNGs, scene masks) to the output directory.

Layouts are deterministic: the same story and book ID always produce the
same result, so artifacts are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompose(cmd.Context(), args[0], opts, composeConfig{
				bookID:        bookID,
				newBook:       newBook,
				illustrations: illustrations,
				output:        output,
				formats:       formats,
				noCache:       noCache,
				concurrency:   concurrency,
			})
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: <input>.layout/)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&concurrency, "concurrency", pipeline.DefaultConcurrency, "parallel page workers")

	// Input flags
	cmd.Flags().StringVar(&bookID, "book", "", "book ID (default: the story's book_id)")
	cmd.Flags().BoolVar(&newBook, "new-book", false, "mint a fresh book ID instead of reusing the story's")
	cmd.Flags().StringVar(&illustrations, "illustrations", "", "illustrations.json file with per-page image URLs")

	// Output flags
	cmd.Flags().StringVarP(&formats, "formats", "f", "json", "comma-separated output formats: json, png")
	cmd.Flags().Float64Var(&opts.PreviewScale, "scale", pipeline.DefaultPreviewScale, "preview PNG scale factor")
	cmd.Flags().BoolVar(&opts.ShowGuides, "guides", false, "draw bleed and margin guides on previews")
	cmd.Flags().BoolVar(&opts.Paired, "paired", false, "build paired open-book spreads instead of one spread per page")
	cmd.Flags().BoolVar(&opts.SceneMasks, "masks", false, "generate scene inpainting masks per page")

	return cmd
}

type composeConfig struct {
	bookID        string
	newBook       bool
	illustrations string
	output        string
	formats       string
	noCache       bool
	concurrency   int
}

// runCompose loads the story, runs the pipeline, and writes artifacts.
func (c *CLI) runCompose(ctx context.Context, input string, opts pipeline.Options, cfg composeConfig) error {
	story, err := loadStory(input)
	if err != nil {
		return err
	}

	opts.Story = story
	opts.BookID = story.BookID
	if cfg.bookID != "" {
		opts.BookID = cfg.bookID
	}
	if cfg.newBook {
		opts.BookID = uuid.NewString()
	}

	if cfg.illustrations != "" {
		ills, err := loadIllustrations(cfg.illustrations)
		if err != nil {
			return err
		}
		opts.Illustrations = ills
	}

	opts.Formats = parseFormats(cfg.formats)
	opts.Concurrency = cfg.concurrency
	opts.Logger = c.Logger

	runner := c.newRunner(cfg.noCache)
	defer runner.Cache.Close()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return fmt.Errorf("compose %s: %w", input, err)
	}
	prog.done(fmt.Sprintf("Composed %d pages", result.Stats.PageCount))

	outDir := cfg.output
	if outDir == "" {
		outDir = input + ".layout"
	}
	written, err := writeArtifacts(outDir, result)
	if err != nil {
		return err
	}

	printSuccess("Compose complete")
	printKeyValue("book", opts.BookID)
	for _, path := range written {
		printFile(path)
	}
	printStats(result.Stats.PageCount, result.Stats.SpreadCount, result.CacheInfo.LayoutHits)
	printNewline()
	printNextStep("Serve previews", "storypress serve")
	return nil
}

// writeArtifacts writes every pipeline output under dir and returns the
// paths written, spreads first.
func writeArtifacts(dir string, result *pipeline.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	var written []string

	spreadsJSON, err := pipeline.MarshalResultSpreads(result)
	if err != nil {
		return nil, fmt.Errorf("serialize spreads: %w", err)
	}
	path := filepath.Join(dir, "spreads.json")
	if err := os.WriteFile(path, spreadsJSON, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	written = append(written, path)

	for page, rendered := range result.Artifacts {
		for format, data := range rendered {
			path := filepath.Join(dir, fmt.Sprintf("page_%d.%s", page, format))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
	}

	for page, data := range result.SceneMasks {
		path := filepath.Join(dir, fmt.Sprintf("mask_%d.png", page))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	slices.Sort(written[1:]) // map iteration order; spreads.json stays first
	return written, nil
}

// loadStory reads and validates a story file.
func loadStory(path string) (*book.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read story %s: %w", path, err)
	}
	story, err := book.UnmarshalStory(data)
	if err != nil {
		return nil, fmt.Errorf("parse story %s: %w", path, err)
	}
	return story, nil
}

// loadIllustrations reads a per-page illustration manifest.
func loadIllustrations(path string) (book.Illustrations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read illustrations %s: %w", path, err)
	}
	var ills book.Illustrations
	if err := json.Unmarshal(data, &ills); err != nil {
		return nil, fmt.Errorf("parse illustrations %s: %w", path, err)
	}
	return ills, nil
}
