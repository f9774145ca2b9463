package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foldline/storypress/pkg/mask"
)

// masksCommand creates the masks command group.
func (c *CLI) masksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "masks",
		Short: "Generate inpainting masks",
		Long: `Generate inpainting masks for the illustration pipeline.

Masks follow the standard inpainting convention: black pixels are preserved,
white pixels may be repainted. Three kinds are supported:

  character   face-and-torso preservation for character variations
  background  subject preservation for background removal
  scene       narration, character panel, and gutter preservation for
              full-scene inpainting`,
	}

	cmd.AddCommand(c.maskCharacterCommand())
	cmd.AddCommand(c.maskBackgroundCommand())
	cmd.AddCommand(c.maskSceneCommand())

	return cmd
}

// maskCharacterCommand creates the "masks character" subcommand.
func (c *CLI) maskCharacterCommand() *cobra.Command {
	var (
		level  string
		action string
		size   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "character",
		Short: "Generate a character preservation mask",
		Long: `Generate a character preservation mask.

The preserve level controls how much of the character survives inpainting:
strict keeps the face and full torso, moderate keeps the face and upper
torso, loose keeps the face only. With --action the level is derived from
the page's visual action instead (still poses preserve more, movement
preserves less).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl := mask.PreserveLevel(level)
			if action != "" {
				lvl = mask.PreserveLevelForAction(action)
			}
			switch lvl {
			case mask.PreserveStrict, mask.PreserveModerate, mask.PreserveLoose:
			default:
				return fmt.Errorf("invalid preserve level %q (must be strict, moderate, or loose)", level)
			}
			m := mask.CharacterMask(lvl)
			if size > 0 {
				var err error
				if m, err = m.Resize(size, size); err != nil {
					return err
				}
			}
			return writeMask(m, output)
		},
	}

	cmd.Flags().StringVar(&level, "level", string(mask.PreserveModerate), "preserve level: strict, moderate, loose")
	cmd.Flags().StringVar(&action, "action", "", "derive the level from a visual action (e.g. \"sleeping under a tree\")")
	cmd.Flags().IntVar(&size, "size", 0, "resample to size x size pixels for the inpainting model (0 keeps the native size)")
	cmd.Flags().StringVarP(&output, "output", "o", "character_mask.png", "output file")

	return cmd
}

// maskBackgroundCommand creates the "masks background" subcommand.
func (c *CLI) maskBackgroundCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "background",
		Short: "Generate a background removal mask",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeMask(mask.BackgroundRemovalMask(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "background_mask.png", "output file")

	return cmd
}

// maskSceneCommand creates the "masks scene" subcommand.
func (c *CLI) maskSceneCommand() *cobra.Command {
	var (
		position string
		page     int
		zones    bool
		output   string
		narr     []float64
	)

	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Generate a scene inpainting mask",
		Long: `Generate a scene inpainting mask.

The mask preserves the narration box, the character panel on the given side,
and the center gutter. With --zones, page-dependent detail zones are opened
for repainting first; preserve regions still win where they overlap.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(narr) != 4 {
				return fmt.Errorf("--narration needs four values: x,y,w,h")
			}
			bounds := mask.Rect{X: narr[0], Y: narr[1], W: narr[2], H: narr[3]}

			var detail []mask.Rect
			if zones {
				detail = mask.DetailZones(page)
			}
			m, err := mask.SceneMask(mask.CharacterPosition(position), bounds, detail...)
			if err != nil {
				return err
			}
			return writeMask(m, output)
		},
	}

	cmd.Flags().StringVar(&position, "position", string(mask.PositionLeft), "character panel side: left, right")
	cmd.Flags().IntVar(&page, "page", 1, "page number (selects detail zones)")
	cmd.Flags().BoolVar(&zones, "zones", false, "open page-dependent detail zones for repainting")
	cmd.Flags().Float64SliceVar(&narr, "narration", []float64{268, 800, 1000, 140}, "narration box as x,y,w,h")
	cmd.Flags().StringVarP(&output, "output", "o", "scene_mask.png", "output file")

	return cmd
}

// writeMask encodes a raster to PNG and writes it.
func writeMask(m *mask.Raster, output string) error {
	data, err := m.PNG()
	if err != nil {
		return fmt.Errorf("encode mask: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Mask generated (%dx%d)", m.Width(), m.Height())
	printFile(output)
	return nil
}
