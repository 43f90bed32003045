package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/texscale/texscale/pkg/errors"
	"github.com/texscale/texscale/pkg/pipeline"
	"github.com/texscale/texscale/pkg/report"
)

// fitCommand creates the fit command for computing scale factors.
func (c *CLI) fitCommand() *cobra.Command {
	var (
		jsonOut    bool
		noCache    bool
		refresh    bool
		reportPath string
	)
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "fit <pattern>",
		Short: "Compute the scale factors that fit an object to its texture",
		Long: `Compute the scale factors that fit an object to its texture.

The object's current footprint (--width, --height, in meters) is compared
against the physical size the reference tile represents at the given
pixel density (--ppmm, pixels per millimeter). The result is the target
footprint and the X/Y factors to apply.

The reference tile is chosen by --mode: first (lowest number), largest or
smallest (by pixel count), or manual with an explicit --tile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.baseOptions(args[0])
			opts.Pattern = base.Pattern
			opts.Logger = base.Logger
			if opts.Mode == "" {
				opts.Mode = base.Mode
			}
			if opts.PixelsPerMM == 0 {
				opts.PixelsPerMM = base.PixelsPerMM
			}
			opts.Refresh = refresh
			return c.runFit(cmd.Context(), opts, jsonOut, noCache, reportPath)
		},
	}

	cmd.Flags().Float64Var(&opts.ObjectWidth, "width", 0, "object width in meters")
	cmd.Flags().Float64Var(&opts.ObjectHeight, "height", 0, "object height in meters")
	cmd.Flags().Float64Var(&opts.PixelsPerMM, "ppmm", 0, "pixel density in pixels per millimeter")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "tile selection mode: first, largest, smallest, manual")
	cmd.Flags().IntVar(&opts.Tile, "tile", 0, "explicit tile number for manual mode")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the plan as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and rescan")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a JSON report to this path")

	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

func (c *CLI) runFit(ctx context.Context, opts pipeline.Options, jsonOut, noCache bool, reportPath string) error {
	if reportPath != "" {
		if err := errors.ValidateOutputPath(reportPath); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fitting to %s...", opts.Pattern))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fit failed")
		return err
	}
	spinner.Stop()

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printPlan(result)
	}

	if reportPath != "" {
		rep := report.New(opts.Pattern, result.Tiles)
		rep.Mode = opts.Mode
		rep.SelectedTile = result.SelectedTile
		rep.Plan = result.Plan
		analysis := result.Analysis
		rep.Analysis = &analysis
		if err := report.ExportJSON(rep, reportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		printFile(reportPath)
	}

	return nil
}

// printPlan renders the computed plan as labeled values.
func printPlan(result *pipeline.Result) {
	tile := result.Tiles[result.SelectedTile]

	fmt.Println(StyleTitle.Render("Fit plan"))
	printKeyValue("Tile", fmt.Sprintf("%d (%dx%d px)", tile.Number, tile.Width, tile.Height))
	printKeyValue("Target size", fmt.Sprintf("%.3f x %.3f m", result.Plan.TargetWidthM, result.Plan.TargetHeightM))
	printKeyValue("Scale", fmt.Sprintf("%.4f x %.4f", result.Plan.ScaleX, result.Plan.ScaleY))
	printKeyValue("Aspect ratio", fmt.Sprintf("%.4f", result.Plan.AspectRatio))
	if result.Plan.Density.Valid {
		printKeyValue("Density", fmt.Sprintf("%.0f px/m", result.Plan.Density.Average))
	}
	printStats(result.Stats.TileCount, len(result.Tiles.Gaps()), result.CacheInfo.PlanHit)

	for _, w := range result.Plan.Warnings {
		printWarning("%s", w)
	}
	printAnalysis(result.Analysis)
}
