package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/texscale/texscale/pkg/pipeline"
	"github.com/texscale/texscale/pkg/udim"
)

// scanCommand creates the scan command for discovering UDIM tiles.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		jsonOut     bool
		noCache     bool
		refresh     bool
		showMissing bool
	)

	cmd := &cobra.Command{
		Use:   "scan <pattern>",
		Short: "Discover UDIM tiles and read their dimensions",
		Long: `Discover UDIM tiles and read their dimensions.

The pattern names a texture sequence either with a <UDIM> token
(wall_<UDIM>.png) or by pointing at any tile of the sequence
(wall_1001.png). Matching files in the directory are listed with their
pixel dimensions, and the sequence is checked for gaps and mixed
resolutions.

Scan results are cached locally; any change to the directory
invalidates the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions(args[0])
			opts.Refresh = refresh
			return c.runScan(cmd.Context(), opts, jsonOut, noCache, showMissing)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the tile set as JSON")
	cmd.Flags().BoolVar(&showMissing, "show-missing", false, "list gaps in the sequence as rows")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and rescan")

	return cmd
}

func (c *CLI) runScan(ctx context.Context, opts pipeline.Options, jsonOut, noCache, showMissing bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", opts.Pattern))
	spinner.Start()

	set, cacheHit, err := runner.ScanWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return err
	}
	spinner.Stop()

	if jsonOut {
		return writeTileJSON(os.Stdout, set)
	}

	printTileTable(set, showMissing)
	printStats(len(set), len(set.Gaps()), cacheHit)
	printAnalysis(udim.Analyze(set))
	printNextStep("Fit an object", fmt.Sprintf("texscale fit %q --width 2.0 --height 1.0", opts.Pattern))
	return nil
}

// printTileTable renders the discovered tiles as a table. With
// showMissing, gaps in the sequence get their own rows.
func printTileTable(set udim.TileSet, showMissing bool) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	numbers := set.Numbers()
	if showMissing {
		numbers = append(numbers, set.Gaps()...)
		sort.Ints(numbers)
	}

	rows := make([][]string, 0, len(numbers))
	for _, n := range numbers {
		t, ok := set[n]
		if !ok {
			rows = append(rows, []string{strconv.Itoa(n), "?", "", "gap"})
			continue
		}
		dims := "?"
		if t.Width > 0 || t.Height > 0 {
			dims = fmt.Sprintf("%dx%d", t.Width, t.Height)
		}
		status := "ok"
		if !t.Exists {
			status = "missing"
		}
		rows = append(rows, []string{strconv.Itoa(t.Number), dims, t.Filename, status})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Tile", "Size", "File", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 && rows[row][3] != "ok" {
				return lipgloss.NewStyle().Foreground(colorRed)
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	fmt.Println(t.Render())
}

// printAnalysis reports sequence findings under the table.
func printAnalysis(report udim.Report) {
	for _, e := range report.Errors {
		printError("%s", e)
	}
	for _, w := range report.Warnings {
		printWarning("%s", w)
	}
	for _, s := range report.Suggestions {
		printDetail("%s", s)
	}
}

// writeTileJSON prints the tile set as an ordered JSON array.
func writeTileJSON(w *os.File, set udim.TileSet) error {
	tiles := make([]udim.Tile, 0, len(set))
	for _, n := range set.Numbers() {
		tiles = append(tiles, set[n])
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tiles)
}
