package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/texscale/texscale/pkg/errors"
	"github.com/texscale/texscale/pkg/udim"
)

// analyzeCommand creates the analyze command for sequence validation.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <pattern>",
		Short: "Validate a UDIM sequence",
		Long: `Validate a UDIM sequence.

The sequence is scanned and checked for gaps, mixed resolutions,
oversized tiles, and files missing on disk. Errors make the sequence
invalid and fail the command; warnings and suggestions are advisory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), args[0], refresh, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and rescan")

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, pattern string, refresh, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.baseOptions(pattern)
	opts.Refresh = refresh

	p := newProgress(c.Logger)
	set, err := runner.Scan(ctx, opts)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Scanned %d tiles", len(set)))

	stats := udim.Stats(set)
	fmt.Println(StyleTitle.Render("Sequence analysis"))
	printKeyValue("Tiles", fmt.Sprintf("%d", stats.Count))
	printKeyValue("Range", fmt.Sprintf("%d to %d", stats.MinTile, stats.MaxTile))
	if stats.Count > 0 {
		printKeyValue("Resolutions", fmt.Sprintf("%d distinct", len(stats.Resolutions)))
		printKeyValue("Total pixels", fmt.Sprintf("%d", stats.TotalPixels))
	}

	rep := udim.Analyze(set)
	printAnalysis(rep)

	if !rep.Valid {
		return errors.New(errors.ErrCodeInvalidInput, "sequence is invalid")
	}
	printSuccess("Sequence is valid")
	return nil
}
