package pipeline

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/texscale/texscale/pkg/cache"
	"github.com/texscale/texscale/pkg/errors"
	"github.com/texscale/texscale/pkg/udim"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{"empty pattern", Options{}, errors.ErrCodeInvalidPattern},
		{"bad mode", Options{Pattern: "wall_<UDIM>.png", Mode: "biggest"}, errors.ErrCodeInvalidMode},
		{"manual without tile", Options{Pattern: "wall_<UDIM>.png", Mode: "manual"}, errors.ErrCodeInvalidTile},
		{"manual with bad tile", Options{Pattern: "wall_<UDIM>.png", Mode: "manual", Tile: 999}, errors.ErrCodeInvalidTile},
		{"negative density", Options{Pattern: "wall_<UDIM>.png", PixelsPerMM: -1}, errors.ErrCodeInvalidInput},
		{"negative width", Options{Pattern: "wall_<UDIM>.png", ObjectWidth: -2}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Pattern: "wall_<UDIM>.png"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Mode != DefaultMode {
		t.Errorf("expected default mode %q, got %q", DefaultMode, opts.Mode)
	}
	if opts.PixelsPerMM != DefaultPixelsPerMM {
		t.Errorf("expected default density %g, got %g", DefaultPixelsPerMM, opts.PixelsPerMM)
	}
	if opts.SheetScale != DefaultSheetScale {
		t.Errorf("expected default sheet scale %g, got %g", DefaultSheetScale, opts.SheetScale)
	}
	if opts.Logger == nil {
		t.Error("expected a default logger")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op: %v", err)
	}
}

// writePNG creates a PNG file with the given pixel dimensions.
func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func testPattern(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wall_1001.png"), 100, 50)
	writePNG(t, filepath.Join(dir, "wall_1002.png"), 200, 200)
	return filepath.Join(dir, "wall_<UDIM>.png")
}

func TestExecuteFullPipeline(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	runner := newTestRunner(t, dir)

	opts := Options{
		Pattern:      testPattern(t),
		Mode:         "largest",
		ObjectWidth:  0.4,
		ObjectHeight: 0.4,
		PixelsPerMM:  1.0,
	}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.TileCount != 2 {
		t.Errorf("expected 2 tiles, got %d", result.Stats.TileCount)
	}
	if result.SelectedTile != 1002 {
		t.Errorf("largest mode should select 1002, got %d", result.SelectedTile)
	}
	// 200px at 1 px/mm is 200mm = 0.2m; object is 0.4m, so scale is 0.5.
	if result.Plan.ScaleX != 0.5 || result.Plan.ScaleY != 0.5 {
		t.Errorf("expected scale (0.5, 0.5), got (%g, %g)", result.Plan.ScaleX, result.Plan.ScaleY)
	}
	if result.CacheInfo.ScanHit || result.CacheInfo.PlanHit {
		t.Error("first run should not hit the cache")
	}
	if !result.Analysis.Valid {
		t.Errorf("sequence should be valid: %v", result.Analysis.Errors)
	}
	if result.ScanHash == "" {
		t.Error("expected a scan hash")
	}

	// Second run hits the cache for both stages.
	again, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute (cached): %v", err)
	}
	if !again.CacheInfo.ScanHit {
		t.Error("second run should hit the scan cache")
	}
	if !again.CacheInfo.PlanHit {
		t.Error("second run should hit the plan cache")
	}
	if again.SelectedTile != result.SelectedTile {
		t.Error("cached run should select the same tile")
	}
}

func TestExecuteSingleImage(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	writePNG(t, path, 300, 150)

	opts := Options{
		Pattern:      path,
		ObjectWidth:  0.6,
		ObjectHeight: 0.3,
		PixelsPerMM:  1.0,
	}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.SelectedTile != udim.Base {
		t.Errorf("single image should map to tile %d, got %d", udim.Base, result.SelectedTile)
	}
	// 300px at 1 px/mm is 0.3m; object is 0.6m wide, so X scale is 0.5.
	if result.Plan.ScaleX != 0.5 || result.Plan.ScaleY != 0.5 {
		t.Errorf("expected scale (0.5, 0.5), got (%g, %g)", result.Plan.ScaleX, result.Plan.ScaleY)
	}
}

func TestExecuteManualMode(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	opts := Options{
		Pattern:      testPattern(t),
		Mode:         "manual",
		Tile:         1001,
		ObjectWidth:  0.2,
		ObjectHeight: 0.1,
	}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.SelectedTile != 1001 {
		t.Errorf("manual mode should select 1001, got %d", result.SelectedTile)
	}
	// 100x50 px at 1 px/mm is 0.1x0.05 m against a 0.2x0.1 m object.
	if result.Plan.ScaleX != 0.5 || result.Plan.ScaleY != 0.5 {
		t.Errorf("expected scale (0.5, 0.5), got (%g, %g)", result.Plan.ScaleX, result.Plan.ScaleY)
	}

	// A valid tile number that was never scanned is rejected.
	opts.Tile = 1050
	if _, err := runner.Execute(ctx, opts); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND for unscanned tile, got %v", err)
	}
}

func TestScanRefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	runner := newTestRunner(t, dir)

	opts := Options{Pattern: testPattern(t)}

	if _, _, err := runner.ScanWithCacheInfo(ctx, opts); err != nil {
		t.Fatalf("ScanWithCacheInfo: %v", err)
	}

	_, hit, err := runner.ScanWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatalf("ScanWithCacheInfo: %v", err)
	}
	if !hit {
		t.Error("second scan should hit the cache")
	}

	opts.Refresh = true
	_, hit, err = runner.ScanWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatalf("ScanWithCacheInfo (refresh): %v", err)
	}
	if hit {
		t.Error("refresh should bypass the cache")
	}
}

func TestScanCacheHonorsRunnerTTL(t *testing.T) {
	ctx := context.Background()
	runner := newTestRunner(t, t.TempDir())
	runner.ScanTTL = 10 * time.Millisecond

	opts := Options{Pattern: testPattern(t)}

	if _, hit, err := runner.ScanWithCacheInfo(ctx, opts); err != nil {
		t.Fatalf("scan: %v", err)
	} else if hit {
		t.Error("first scan should not hit the cache")
	}

	time.Sleep(50 * time.Millisecond)

	if _, hit, err := runner.ScanWithCacheInfo(ctx, opts); err != nil {
		t.Fatalf("scan after expiry: %v", err)
	} else if hit {
		t.Error("scan after the TTL elapsed should miss the cache")
	}
}

func TestScanCacheInvalidatedByFileChange(t *testing.T) {
	ctx := context.Background()
	cacheDir := t.TempDir()
	runner := newTestRunner(t, cacheDir)

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "wall_1001.png"), 100, 100)
	opts := Options{Pattern: filepath.Join(dir, "wall_<UDIM>.png")}

	set, _, err := runner.ScanWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatalf("ScanWithCacheInfo: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected 1 tile, got %d", len(set))
	}

	// Adding a tile changes the directory fingerprint.
	writePNG(t, filepath.Join(dir, "wall_1002.png"), 100, 100)

	set, hit, err := runner.ScanWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatalf("ScanWithCacheInfo: %v", err)
	}
	if hit {
		t.Error("fingerprint change should invalidate the cached scan")
	}
	if len(set) != 2 {
		t.Errorf("expected 2 tiles after adding a file, got %d", len(set))
	}
}

func TestScopedKeyersIsolateCacheEntries(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	opts := Options{Pattern: testPattern(t)}
	a := NewRunner(c, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "project-a"), nil)
	b := NewRunner(c, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "project-b"), nil)

	if _, hit, err := a.ScanWithCacheInfo(ctx, opts); err != nil {
		t.Fatalf("scan: %v", err)
	} else if hit {
		t.Error("first scan should not hit the cache")
	}
	if _, hit, err := a.ScanWithCacheInfo(ctx, opts); err != nil {
		t.Fatalf("scan: %v", err)
	} else if !hit {
		t.Error("same scope should hit the cache")
	}
	if _, hit, err := b.ScanWithCacheInfo(ctx, opts); err != nil {
		t.Fatalf("scan: %v", err)
	} else if hit {
		t.Error("a different scope must not see the other scope's entries")
	}
}

func TestSheetDOTFormat(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	runner := newTestRunner(t, dir)

	set := udim.TileSet{
		1001: {Number: 1001, Width: 100, Height: 100, Exists: true},
		1003: {Number: 1003, Width: 100, Height: 100, Exists: true},
	}
	opts := Options{
		Pattern:     "wall_<UDIM>.png",
		Formats:     []string{FormatDOT},
		ShowMissing: true,
	}

	sheets, hit, err := runner.SheetWithCacheInfo(ctx, set, opts)
	if err != nil {
		t.Fatalf("SheetWithCacheInfo: %v", err)
	}
	if hit {
		t.Error("first render should not hit the cache")
	}
	if len(sheets[FormatDOT]) == 0 {
		t.Fatal("expected DOT output")
	}

	_, hit, err = runner.SheetWithCacheInfo(ctx, set, opts)
	if err != nil {
		t.Fatalf("SheetWithCacheInfo (cached): %v", err)
	}
	if !hit {
		t.Error("second render should hit the cache")
	}
}

func newTestRunner(t *testing.T, dir string) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return NewRunner(c, nil, nil)
}
