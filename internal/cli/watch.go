package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/texscale/texscale/pkg/pipeline"
	"github.com/texscale/texscale/pkg/udim"
)

// watchCommand creates the watch command for live sequence monitoring.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		interval time.Duration
		width    float64
		height   float64
		ppmm     float64
	)

	cmd := &cobra.Command{
		Use:   "watch <pattern>",
		Short: "Watch a UDIM sequence for changes",
		Long: `Watch a UDIM sequence for changes.

The directory is rescanned at a fixed interval and the tile table is
redrawn whenever the sequence changes. Useful while textures are being
exported from a paint tool. When --width and --height are given, the
fit is recomputed after every rescan so resolution changes show up as
updated scale factors. Press q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions(args[0])
			opts.Refresh = true
			opts.ObjectWidth = width
			opts.ObjectHeight = height
			if ppmm > 0 {
				opts.PixelsPerMM = ppmm
			}

			runner, err := c.newRunner(true)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			model := newWatchModel(cmd.Context(), runner, opts, interval)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", c.Config.PollIntervalDuration(), "rescan interval")
	cmd.Flags().Float64Var(&width, "width", 0, "object width in meters, enables live fit")
	cmd.Flags().Float64Var(&height, "height", 0, "object height in meters, enables live fit")
	cmd.Flags().Float64Var(&ppmm, "ppmm", 0, "pixel density in pixels per millimeter")

	return cmd
}

// =============================================================================
// watchModel - live tile table
// =============================================================================

// tickMsg triggers a rescan.
type tickMsg time.Time

// scanResultMsg carries the outcome of a background rescan. result is set
// when a live fit was requested.
type scanResultMsg struct {
	set    udim.TileSet
	result *pipeline.Result
	err    error
}

// watchModel is the bubbletea model for the watch command.
type watchModel struct {
	ctx      context.Context
	runner   *pipeline.Runner
	opts     pipeline.Options
	interval time.Duration

	set      udim.TileSet
	result   *pipeline.Result
	err      error
	scans    int
	lastScan time.Time
}

func newWatchModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, interval time.Duration) watchModel {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return watchModel{
		ctx:      ctx,
		runner:   runner,
		opts:     opts,
		interval: interval,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.scanCmd(), m.tickCmd())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.scanCmd()
		}
	case tickMsg:
		return m, tea.Batch(m.scanCmd(), m.tickCmd())
	case scanResultMsg:
		m.set = msg.set
		m.result = msg.result
		m.err = msg.err
		m.scans++
		m.lastScan = time.Now()
		return m, nil
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Watching " + m.opts.Pattern))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + m.err.Error())
		b.WriteString("\n")
	case len(m.set) > 0:
		b.WriteString(watchTable(m.set))
		b.WriteString("\n")
		if m.result != nil && m.result.Plan != nil {
			fit := fmt.Sprintf("tile %d · scale %.4f x %.4f · target %.3f x %.3f m",
				m.result.SelectedTile,
				m.result.Plan.ScaleX, m.result.Plan.ScaleY,
				m.result.Plan.TargetWidthM, m.result.Plan.TargetHeightM)
			b.WriteString(StyleHighlight.Render(fit))
			b.WriteString("\n")
		}
	case m.scans > 0:
		b.WriteString(StyleDim.Render("No tiles found"))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("scans: %d", m.scans)
	if !m.lastScan.IsZero() {
		status += " · last: " + m.lastScan.Format("15:04:05")
	}
	b.WriteString(StyleDim.Render(status))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("r rescan · q quit"))
	return b.String()
}

// scanCmd rescans the pattern in the background. With a live fit
// requested it runs the full pipeline so scale factors track
// resolution changes.
func (m watchModel) scanCmd() tea.Cmd {
	return func() tea.Msg {
		if m.opts.ObjectWidth > 0 && m.opts.ObjectHeight > 0 {
			result, err := m.runner.Execute(m.ctx, m.opts)
			if err != nil {
				return scanResultMsg{err: err}
			}
			return scanResultMsg{set: result.Tiles, result: result}
		}
		set, err := m.runner.Scan(m.ctx, m.opts)
		return scanResultMsg{set: set, err: err}
	}
}

// tickCmd schedules the next rescan.
func (m watchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// watchTable renders the current tile set.
func watchTable(set udim.TileSet) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(set))
	for _, n := range set.Numbers() {
		t := set[n]
		dims := "?"
		if t.Width > 0 || t.Height > 0 {
			dims = fmt.Sprintf("%dx%d", t.Width, t.Height)
		}
		rows = append(rows, []string{strconv.Itoa(t.Number), dims, t.Filename})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Tile", "Size", "File").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
