// Package pipeline provides the core fit pipeline for texscale.
//
// This package implements the complete scan → select → plan pipeline that
// can be used by CLI, API, and watch components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Scan: Discover UDIM tiles on disk and read their pixel dimensions
//  2. Select: Pick the reference tile according to the selection mode
//  3. Plan: Compute the scale factors that fit the object to the tile
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Pattern:      "textures/wall_<UDIM>.png",
//	    Mode:         "largest",
//	    ObjectWidth:  2.0,
//	    ObjectHeight: 1.5,
//	    PixelsPerMM:  2.0,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Plan.ScaleX, result.Plan.ScaleY)
//
// Run individual stages:
//
//	// Scan only
//	set, err := runner.Scan(ctx, opts)
//
//	// Plan with an already selected tile
//	plan, err := runner.Plan(ctx, set, tile, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/texscale/texscale/pkg/cache"
	"github.com/texscale/texscale/pkg/errors"
	"github.com/texscale/texscale/pkg/scale"
	"github.com/texscale/texscale/pkg/udim"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Watch
// =============================================================================

const (
	// DefaultPixelsPerMM is the pixel density assumed when none is given.
	// One pixel per millimeter makes a 1000px texture cover one meter.
	DefaultPixelsPerMM = 1.0

	// DefaultMode is the default tile selection mode.
	DefaultMode = string(udim.ModeFirst)

	// DefaultSheetScale is the default raster scale for PNG contact sheets.
	// A scale of 2.0 produces 2x resolution for high-DPI displays.
	DefaultSheetScale = 2.0
)

// Format constants for contact sheet output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatDOT = "dot"
)

// ValidFormats is the set of supported sheet output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
	FormatDOT: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the fit pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Scan options
	Pattern string `json:"pattern"`
	Refresh bool   `json:"refresh,omitempty"`

	// Selection options
	Mode string `json:"mode,omitempty"`
	Tile int    `json:"tile,omitempty"` // explicit tile number for manual mode

	// Plan options
	ObjectWidth  float64 `json:"object_width,omitempty"`  // meters
	ObjectHeight float64 `json:"object_height,omitempty"` // meters
	PixelsPerMM  float64 `json:"pixels_per_mm,omitempty"`

	// Sheet options
	Formats     []string `json:"formats,omitempty"`
	ShowMissing bool     `json:"show_missing,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	SheetScale  float64  `json:"sheet_scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tiles is the scanned tile set.
	Tiles udim.TileSet

	// ScanHash is the content hash of the scanned tile set.
	ScanHash string

	// SelectedTile is the reference tile number the plan was computed against.
	SelectedTile int

	// Plan contains the computed scale factors and target footprint.
	Plan *scale.Plan

	// Analysis carries validation findings for the scanned sequence.
	Analysis udim.Report

	// Sheets contains rendered contact sheets keyed by format.
	Sheets map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TileCount int
	ScanTime  time.Duration
	PlanTime  time.Duration
	SheetTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ScanHit  bool // Whether the tile set came from cache
	PlanHit  bool // Whether the plan came from cache
	SheetHit bool // Whether all sheets came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a sheet format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all sheet formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForScan(); err != nil {
		return err
	}
	if err := o.ValidateForFit(); err != nil {
		return err
	}
	o.SetSheetDefaults()
	o.validated = true
	return nil
}

// ValidateForScan checks required fields for scanning.
func (o *Options) ValidateForScan() error {
	if err := errors.ValidatePattern(o.Pattern); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForFit validates selection and plan fields and applies defaults.
func (o *Options) ValidateForFit() error {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	mode, err := udim.ParseMode(o.Mode)
	if err != nil {
		return err
	}
	if mode == udim.ModeManual {
		if _, _, err := udim.Decompose(o.Tile); err != nil {
			return errors.New(errors.ErrCodeInvalidTile, "manual mode requires a valid tile number, got %d", o.Tile)
		}
	}

	if o.PixelsPerMM == 0 {
		o.PixelsPerMM = DefaultPixelsPerMM
	}
	if o.PixelsPerMM < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "pixels per mm must be positive, got %g", o.PixelsPerMM)
	}
	if o.ObjectWidth < 0 || o.ObjectHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "object dimensions must not be negative")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetSheetDefaults sets default values for contact sheet rendering.
func (o *Options) SetSheetDefaults() {
	if o.SheetScale == 0 {
		o.SheetScale = DefaultSheetScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForSheet validates and sets defaults for sheet rendering.
func (o *Options) ValidateForSheet() error {
	o.SetSheetDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	return ValidateFormats(o.Formats)
}

// IsManual returns true if the tile is chosen explicitly.
func (o *Options) IsManual() bool {
	return udim.Mode(o.Mode) == udim.ModeManual
}

// PlanKeyOpts returns cache key options for plan computation.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		Mode:         o.Mode,
		Tile:         o.Tile,
		ObjectWidth:  o.ObjectWidth,
		ObjectHeight: o.ObjectHeight,
		PixelsPerMM:  o.PixelsPerMM,
	}
}

// SheetKeyOpts returns cache key options for sheet rendering.
func (o *Options) SheetKeyOpts(format string) cache.SheetKeyOpts {
	return cache.SheetKeyOpts{
		Format:      format,
		ShowMissing: o.ShowMissing,
		Detailed:    o.Detailed,
	}
}
