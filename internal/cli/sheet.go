package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/texscale/texscale/pkg/errors"
	"github.com/texscale/texscale/pkg/pipeline"
)

// sheetCommand creates the sheet command for rendering contact sheets.
func (c *CLI) sheetCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "sheet <pattern>",
		Short: "Render a contact sheet of a UDIM sequence",
		Long: `Render a contact sheet of a UDIM sequence.

Tiles are laid out on the UV grid, one cell per tile, so gaps and
resolution mismatches are visible at a glance. Gap placeholders and
missing files are drawn dashed.

Results are cached locally for faster subsequent runs.

PNG and PDF output require librsvg (rsvg-convert).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.baseOptions(args[0])
			opts.Pattern = base.Pattern
			opts.Logger = base.Logger
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runSheet(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.ShowMissing, "show-missing", false, "draw placeholders for gaps in the sequence")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include dimensions and file names in cells")
	cmd.Flags().Float64Var(&opts.SheetScale, "scale", 0, "raster scale for PNG output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runSheet(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if output != "" {
		if err := errors.ValidateOutputPath(output); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering sheet for %s...", opts.Pattern))
	spinner.Start()

	set, err := runner.Scan(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return err
	}

	sheets, cacheHit, err := runner.SheetWithCacheInfo(ctx, set, opts)
	if err != nil {
		spinner.StopWithError("Sheet rendering failed")
		return err
	}
	spinner.Stop()

	base := output
	if base == "" {
		base = strings.ReplaceAll(filepath.Base(opts.Pattern), "<UDIM>", "sheet")
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	for _, format := range opts.Formats {
		path := outputPath(base, format, len(opts.Formats) == 1)
		if err := os.WriteFile(path, sheets[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(len(set), len(set.Gaps()), cacheHit)
	return nil
}

// outputPath derives the output file name for a format. A single format
// keeps an explicit output path as-is when it already has an extension.
func outputPath(base, format string, single bool) string {
	if single && strings.Contains(filepath.Base(base), ".") {
		return base
	}
	return base + "." + format
}
