// Package report provides persistent records of scan and fit results.
//
// A report captures everything a pipeline run produced: the pattern that
// was scanned, the tiles found, the selection, the computed scale plan,
// and the sequence analysis. Reports serialize to JSON for file exchange
// and can be persisted through a [Store] backend.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/texscale/texscale/pkg/scale"
	"github.com/texscale/texscale/pkg/udim"
)

// Report is a persisted record of a single pipeline run.
type Report struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Pattern      string `json:"pattern" bson:"pattern"`
	Mode         string `json:"mode,omitempty" bson:"mode,omitempty"`
	SelectedTile int    `json:"selected_tile,omitempty" bson:"selected_tile,omitempty"`

	Tiles    []udim.Tile  `json:"tiles" bson:"tiles"`
	Plan     *scale.Plan  `json:"plan,omitempty" bson:"plan,omitempty"`
	Analysis *udim.Report `json:"analysis,omitempty" bson:"analysis,omitempty"`
}

// New creates a report for a scanned pattern with a fresh unique ID.
// Tiles are stored in ascending number order for stable output.
func New(pattern string, set udim.TileSet) *Report {
	tiles := make([]udim.Tile, 0, len(set))
	for _, n := range set.Numbers() {
		tiles = append(tiles, set[n])
	}
	return &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Pattern:   pattern,
		Tiles:     tiles,
	}
}

// TileSet rebuilds the tile set from the stored tile records.
func (r *Report) TileSet() udim.TileSet {
	set := make(udim.TileSet, len(r.Tiles))
	for _, t := range r.Tiles {
		set[t.Number] = t
	}
	return set
}

// WriteJSON encodes the report as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a report to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(r, f)
}

// ReadJSON decodes a JSON report from r.
// A report must carry an ID and a pattern; anything else is optional.
func ReadJSON(rd io.Reader) (*Report, error) {
	var rep Report
	dec := json.NewDecoder(rd)
	if err := dec.Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if rep.ID == "" {
		return nil, fmt.Errorf("report has no id")
	}
	if rep.Pattern == "" {
		return nil, fmt.Errorf("report %s has no pattern", rep.ID)
	}
	return &rep, nil
}

// ImportJSON reads a report from a JSON file at path.
// This is a convenience wrapper around [ReadJSON] for file-based input.
func ImportJSON(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
