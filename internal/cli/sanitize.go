package cli

import (
	"github.com/spf13/cobra"

	"github.com/foldline/storypress/pkg/layout"
)

// sanitizeCommand creates the sanitize command.
func (c *CLI) sanitizeCommand() *cobra.Command {
	var inPlace bool

	cmd := &cobra.Command{
		Use:   "sanitize [layout.json...]",
		Short: "Strip deprecated decoration fields from layout files",
		Long: `Strip deprecated decoration fields from layout files.

Layouts written by older releases may carry decorative elements, opacity
values, and per-element decoration lists that the current format no longer
supports. Sanitizing removes them, keeping only images and text; decorative
text plaques are reclassified as regular text elements so their content
survives.

Sanitizing is idempotent and best-effort: a file that fails to sanitize is
reported and skipped, the rest are still processed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSanitize(args, inPlace)
		},
	}

	cmd.Flags().BoolVarP(&inPlace, "write", "w", false, "rewrite files in place (default: report only)")

	return cmd
}

// runSanitize processes each file independently so one bad file does not
// block the rest.
func (c *CLI) runSanitize(paths []string, inPlace bool) error {
	cleaned, failed := 0, 0
	for _, path := range paths {
		if err := sanitizeFile(path, inPlace); err != nil {
			printError("%s: %v", path, err)
			failed++
			continue
		}
		if inPlace {
			printFile(path)
		}
		cleaned++
	}

	if inPlace {
		printSuccess("Sanitized %d layouts", cleaned)
	} else {
		printInfo("%d layouts would be sanitized (use --write to apply)", cleaned)
	}
	if failed > 0 {
		printWarning("%d layouts skipped", failed)
	}
	return nil
}

// sanitizeFile sanitizes one layout file.
func sanitizeFile(path string, inPlace bool) error {
	l, err := layout.ReadLayoutFile(path)
	if err != nil {
		return err
	}
	clean, err := layout.SanitizePageLayout(&l)
	if err != nil {
		return err
	}
	if !inPlace {
		return nil
	}
	return layout.WriteLayoutFile(clean, path)
}
