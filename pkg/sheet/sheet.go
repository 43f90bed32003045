// Package sheet generates visual contact sheets for UDIM tile sequences.
//
// A contact sheet lays out every tile of a sequence on the UV grid, one
// cell per tile, so gaps and resolution mismatches are visible at a
// glance. Sheets are built as Graphviz DOT graphs with pinned node
// positions and can be rendered to SVG, PNG, or PDF.
package sheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/texscale/texscale/pkg/udim"
)

// Cell spacing on the UV grid, in graphviz points.
const (
	cellWidth  = 1.6
	cellHeight = 1.6
)

// Options configures contact sheet generation.
type Options struct {
	// Detailed includes pixel dimensions and file names in cell labels.
	// When false, only the tile number is shown.
	Detailed bool

	// ShowMissing renders placeholder cells for gaps in the sequence.
	ShowMissing bool

	// Title is drawn above the grid when non-empty.
	Title string
}

// ToDOT converts a tile set to Graphviz DOT format for contact sheet
// rendering. Cells are pinned to their (u, v) grid positions, so the
// resulting DOT must be rendered with the neato engine (see [RenderSVG]).
//
// Gap placeholders and tiles whose files are missing on disk are rendered
// with dashed outlines and grey fill to distinguish them from real tiles.
func ToDOT(set udim.TileSet, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fixedsize=true, width=1.4, height=1.4];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", opts.Title)
		buf.WriteString("  labelloc=\"t\";\n")
		buf.WriteString("  fontsize=20;\n")
	}
	buf.WriteString("\n")

	for _, n := range set.Numbers() {
		t := set[n]
		label := fmtLabel(t, opts.Detailed)
		attrs := fmtAttrs(t, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", fmt.Sprintf("%d", n), strings.Join(attrs, ", "))
	}

	if opts.ShowMissing {
		for _, n := range set.Gaps() {
			u, v, err := udim.Decompose(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey, fontcolor=grey40, pos=%q];\n",
				fmt.Sprintf("%d", n), fmt.Sprintf("%d\n(gap)", n), posAttr(u, v))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(t udim.Tile, detailed bool) string {
	if !detailed {
		return fmt.Sprintf("%d", t.Number)
	}

	parts := []string{fmt.Sprintf("%d", t.Number)}
	if t.Width > 0 || t.Height > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", t.Width, t.Height))
	}
	if t.Filename != "" {
		parts = append(parts, t.Filename)
	}
	if !t.Exists {
		parts = append(parts, "(missing)")
	}

	return strings.Join(parts, "\n")
}

func fmtAttrs(t udim.Tile, label string) []string {
	u, v, _ := udim.Decompose(t.Number)
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=%q", posAttr(u, v)),
	}
	if !t.Exists {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=mistyrose", "fontcolor=grey20")
	}
	return attrs
}

// posAttr pins a cell to its UV grid position. The trailing "!" tells
// neato not to move the node during layout.
func posAttr(u, v int) string {
	return fmt.Sprintf("%.2f,%.2f!", float64(u)*cellWidth, float64(v)*cellHeight)
}
