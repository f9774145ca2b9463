package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldline/storypress/pkg/book"
	"github.com/foldline/storypress/pkg/render/sink"
	"github.com/foldline/storypress/pkg/spread"
)

// spreadsCommand creates the spreads command.
func (c *CLI) spreadsCommand() *cobra.Command {
	var (
		bookID        string
		illustrations string
		output        string
		paired        bool
	)

	cmd := &cobra.Command{
		Use:   "spreads [story.json]",
		Short: "Group a story's pages into display spreads",
		Long: `Group a story's pages into display spreads.

By default each page becomes its own spread (the landscape model used by the
print export). With --paired, consecutive page pairs form open-book spreads
with a character placement per spread, as shown in the preview viewer.

Pages without illustrations stay in the output with empty image references,
so a partially illustrated book still previews.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSpreads(args[0], bookID, illustrations, output, paired)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&bookID, "book", "", "book ID (default: the story's book_id)")
	cmd.Flags().StringVar(&illustrations, "illustrations", "", "illustrations.json file with per-page image URLs")
	cmd.Flags().BoolVar(&paired, "paired", false, "build paired open-book spreads")

	return cmd
}

// runSpreads builds and writes the spread model.
func (c *CLI) runSpreads(input, bookID, illustrations, output string, paired bool) error {
	story, err := loadStory(input)
	if err != nil {
		return err
	}
	if bookID == "" {
		bookID = story.BookID
	}

	var ills book.Illustrations
	if illustrations != "" {
		ills, err = loadIllustrations(illustrations)
		if err != nil {
			return err
		}
	}

	var data []byte
	var count int
	if paired {
		spreads := spread.NewBuilder(bookID).BuildSpreads(story.Pages, ills)
		count = len(spreads)
		data, err = sink.RenderSpreadsJSON(spreads)
	} else {
		spreads := spread.BuildPageSpreads(story.Pages, ills)
		count = len(spreads)
		data, err = sink.RenderPageSpreadsJSON(spreads)
	}
	if err != nil {
		return fmt.Errorf("serialize spreads: %w", err)
	}

	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Built %d spreads", count)
	printFile(output)
	return nil
}
