package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/texscale/texscale/pkg/cache"
	"github.com/texscale/texscale/pkg/errors"
	"github.com/texscale/texscale/pkg/observability"
	"github.com/texscale/texscale/pkg/scale"
	"github.com/texscale/texscale/pkg/sheet"
	"github.com/texscale/texscale/pkg/texture"
	"github.com/texscale/texscale/pkg/udim"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ScanTTL bounds how long scan results stay cached. Plans and
	// sheets are keyed by a scan fingerprint and can live longer.
	ScanTTL  time.Duration
	PlanTTL  time.Duration
	SheetTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		ScanTTL:  cache.TTLScan,
		PlanTTL:  cache.TTLPlan,
		SheetTTL: cache.TTLSheet,
	}
}

// Execute runs the complete scan → select → plan pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Scan
	scanStart := time.Now()
	set, scanHit, err := r.ScanWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Tiles = set
	result.Stats.ScanTime = time.Since(scanStart)
	result.Stats.TileCount = len(set)
	result.CacheInfo.ScanHit = scanHit
	result.ScanHash = scanHash(set)
	result.Analysis = udim.Analyze(set)

	r.Logger.Info("scanned tiles",
		"pattern", opts.Pattern,
		"tiles", len(set),
		"duration", result.Stats.ScanTime)

	// Stage 2: Select
	tile, err := r.SelectTile(ctx, set, opts)
	if err != nil {
		return nil, err
	}
	result.SelectedTile = tile

	// Stage 3: Plan
	planStart := time.Now()
	plan, planHit, err := r.PlanWithCacheInfo(ctx, set, tile, opts)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	result.Stats.PlanTime = time.Since(planStart)
	result.CacheInfo.PlanHit = planHit

	r.Logger.Info("computed plan",
		"tile", tile,
		"scale_x", plan.ScaleX,
		"scale_y", plan.ScaleY,
		"duration", result.Stats.PlanTime)

	return result, nil
}

// ScanWithCacheInfo discovers UDIM tiles with caching and returns cache hit info.
//
// The cache key includes a fingerprint of the target directory, so any
// file added, removed, or touched invalidates the cached scan.
func (r *Runner) ScanWithCacheInfo(ctx context.Context, opts Options) (udim.TileSet, bool, error) {
	if err := opts.ValidateForScan(); err != nil {
		return nil, false, err
	}

	observability.Pipeline().OnScanStart(ctx, opts.Pattern)
	start := time.Now()

	cacheKey := r.Keyer.ScanKey(opts.Pattern, texture.Fingerprint(opts.Pattern))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "scan")
			var set udim.TileSet
			if err := json.Unmarshal(data, &set); err == nil {
				observability.Pipeline().OnScanComplete(ctx, opts.Pattern, len(set), time.Since(start), nil)
				return set, true, nil // Cache hit
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "scan")
		}
	}

	// Scan. Plain images become a one-entry set so the fit path works
	// on non-tiled textures too.
	var set udim.TileSet
	var err error
	if texture.LooksTiled(opts.Pattern) {
		set, err = texture.Scan(ctx, opts.Pattern)
	} else {
		set, err = texture.Single(opts.Pattern)
	}
	observability.Pipeline().OnScanComplete(ctx, opts.Pattern, len(set), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(set); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, r.ScanTTL)
		observability.Cache().OnCacheSet(ctx, "scan", len(data))
	}

	return set, false, nil // Cache miss
}

// Scan is a convenience wrapper that calls ScanWithCacheInfo and discards the cache hit info.
func (r *Runner) Scan(ctx context.Context, opts Options) (udim.TileSet, error) {
	set, _, err := r.ScanWithCacheInfo(ctx, opts)
	return set, err
}

// SelectTile resolves the reference tile for the given options.
// Manual mode returns the explicit tile after checking it was scanned;
// the other modes delegate to [udim.Select].
func (r *Runner) SelectTile(ctx context.Context, set udim.TileSet, opts Options) (int, error) {
	if err := opts.ValidateForFit(); err != nil {
		return 0, err
	}

	var tile int
	var err error
	if opts.IsManual() {
		tile, err = manualTile(set, opts.Tile)
	} else {
		tile, err = udim.Select(set, udim.Mode(opts.Mode))
	}
	observability.Pipeline().OnSelect(ctx, opts.Mode, tile, err)
	return tile, err
}

// PlanWithCacheInfo computes a scale plan with caching and returns cache hit info.
func (r *Runner) PlanWithCacheInfo(ctx context.Context, set udim.TileSet, tile int, opts Options) (*scale.Plan, bool, error) {
	if err := opts.ValidateForFit(); err != nil {
		return nil, false, err
	}

	observability.Pipeline().OnPlanStart(ctx, tile)
	start := time.Now()

	ref, ok := set[tile]
	if !ok {
		err := tileNotScanned(tile)
		observability.Pipeline().OnPlanComplete(ctx, tile, time.Since(start), err)
		return nil, false, err
	}

	cacheKey := r.Keyer.PlanKey(scanHash(set), opts.PlanKeyOpts())

	// Try cache first
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "plan")
			var plan scale.Plan
			if err := json.Unmarshal(data, &plan); err == nil {
				observability.Pipeline().OnPlanComplete(ctx, tile, time.Since(start), nil)
				return &plan, true, nil // Cache hit
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "plan")
		}
	}

	plan, err := scale.Compute(scale.Request{
		CurrentWidth:  opts.ObjectWidth,
		CurrentHeight: opts.ObjectHeight,
		TextureWidth:  ref.Width,
		TextureHeight: ref.Height,
		PixelsPerMM:   opts.PixelsPerMM,
	})
	observability.Pipeline().OnPlanComplete(ctx, tile, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := json.Marshal(plan); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, r.PlanTTL)
		observability.Cache().OnCacheSet(ctx, "plan", len(data))
	}

	return plan, false, nil // Cache miss
}

// Plan is a convenience wrapper that calls PlanWithCacheInfo and discards the cache hit info.
func (r *Runner) Plan(ctx context.Context, set udim.TileSet, tile int, opts Options) (*scale.Plan, error) {
	plan, _, err := r.PlanWithCacheInfo(ctx, set, tile, opts)
	return plan, err
}

// SheetWithCacheInfo renders contact sheets with caching and returns cache hit info.
func (r *Runner) SheetWithCacheInfo(ctx context.Context, set udim.TileSet, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForSheet(); err != nil {
		return nil, false, err
	}

	hash := scanHash(set)

	// Try to get all formats from cache
	allCached := true
	sheets := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.SheetKey(hash, opts.SheetKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			sheets[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(sheets) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "sheet")
		return sheets, true, nil // All sheets from cache
	}
	observability.Cache().OnCacheMiss(ctx, "sheet")

	// Render all formats
	dot := sheet.ToDOT(set, sheet.Options{
		Detailed:    opts.Detailed,
		ShowMissing: opts.ShowMissing,
		Title:       opts.Pattern,
	})

	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = sheet.RenderSVG(dot)
		case FormatPNG:
			data, err = sheet.RenderPNG(dot, opts.SheetScale)
		case FormatPDF:
			data, err = sheet.RenderPDF(dot)
		}
		if err != nil {
			return nil, false, err
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.SheetKey(hash, opts.SheetKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, r.SheetTTL)
		observability.Cache().OnCacheSet(ctx, "sheet", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Sheet is a convenience wrapper that calls SheetWithCacheInfo and discards the cache hit info.
func (r *Runner) Sheet(ctx context.Context, set udim.TileSet, opts Options) (map[string][]byte, error) {
	sheets, _, err := r.SheetWithCacheInfo(ctx, set, opts)
	return sheets, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// manualTile checks that an explicitly requested tile was actually scanned.
func manualTile(set udim.TileSet, tile int) (int, error) {
	if _, ok := set[tile]; !ok {
		return 0, tileNotScanned(tile)
	}
	return tile, nil
}

func tileNotScanned(tile int) error {
	return errors.New(errors.ErrCodeNotFound, "tile %d not found in scanned sequence", tile)
}

// scanHash computes the content hash of a tile set for cache keys.
// Tiles are marshalled in number order so the hash is deterministic.
func scanHash(set udim.TileSet) string {
	ordered := make([]udim.Tile, 0, len(set))
	for _, n := range set.Numbers() {
		ordered = append(ordered, set[n])
	}
	data, _ := json.Marshal(ordered)
	return cache.Hash(data)
}
