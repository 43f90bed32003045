package texture

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/texscale/texscale/pkg/errors"
)

// writePNG writes a w x h PNG fixture into dir.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return path
}

func TestScan_TokenPattern(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "wall_1001.png", 64, 64)
	writePNG(t, dir, "wall_1002.png", 128, 32)
	writePNG(t, dir, "wall_1011.png", 32, 32)
	writePNG(t, dir, "floor_1001.png", 16, 16) // different sequence
	writePNG(t, dir, "wall_0999.png", 16, 16)  // outside UDIM window

	set, err := Scan(context.Background(), filepath.Join(dir, "wall_<UDIM>.png"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(set) != 3 {
		t.Fatalf("len(set) = %d, want 3 (got %v)", len(set), set.Numbers())
	}
	if tile := set[1002]; tile.Width != 128 || tile.Height != 32 {
		t.Errorf("tile 1002 = %dx%d, want 128x32", tile.Width, tile.Height)
	}
	if !set[1001].Exists {
		t.Error("tile 1001 Exists = false, want true")
	}
	if set[1001].SizeBytes == 0 {
		t.Error("tile 1001 SizeBytes = 0, want > 0")
	}
}

func TestScan_NumericPattern(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "rock.1001.png", 64, 64)
	writePNG(t, dir, "rock.1003.png", 64, 64)
	writePNG(t, dir, "rock_extra.1001.png", 16, 16) // different structure

	set, err := Scan(context.Background(), filepath.Join(dir, "rock.1001.png"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []int{1001, 1003}
	got := set.Numbers()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Numbers() = %v, want %v", got, want)
	}
	if gaps := set.Gaps(); len(gaps) != 1 || gaps[0] != 1002 {
		t.Errorf("Gaps() = %v, want [1002]", gaps)
	}
}

func TestScan_UndecodableFormat(t *testing.T) {
	dir := t.TempDir()
	// EXR has no registered decoder - listed with zero dimensions.
	if err := os.WriteFile(filepath.Join(dir, "disp_1001.exr"), []byte("not a real exr"), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Scan(context.Background(), filepath.Join(dir, "disp_<UDIM>.exr"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	tile, ok := set[1001]
	if !ok {
		t.Fatal("tile 1001 not discovered")
	}
	if tile.Width != 0 || tile.Height != 0 {
		t.Errorf("dimensions = %dx%d, want 0x0 for undecodable format", tile.Width, tile.Height)
	}
	if !tile.Exists {
		t.Error("Exists = false, want true")
	}
}

func TestScan_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := Scan(context.Background(), "/nonexistent-dir-texscale/wall_<UDIM>.png")
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
		}
	})

	t.Run("not a tiled pattern", func(t *testing.T) {
		_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "diffuse.png"))
		if !errors.Is(err, errors.ErrCodeInvalidPattern) {
			t.Errorf("code = %v, want INVALID_PATTERN", errors.GetCode(err))
		}
	})

	t.Run("empty pattern", func(t *testing.T) {
		_, err := Scan(context.Background(), "")
		if !errors.Is(err, errors.ErrCodeInvalidPattern) {
			t.Errorf("code = %v, want INVALID_PATTERN", errors.GetCode(err))
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		writePNG(t, dir, "wall_1001.png", 4, 4)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := Scan(ctx, filepath.Join(dir, "wall_<UDIM>.png")); err == nil {
			t.Error("Scan() with cancelled context error = nil, want context error")
		}
	})
}

func TestSingle(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "diffuse.png", 256, 128)

	set, err := Single(filepath.Join(dir, "diffuse.png"))
	if err != nil {
		t.Fatalf("Single() error = %v", err)
	}
	tile := set[1001]
	if tile.Width != 256 || tile.Height != 128 {
		t.Errorf("tile = %dx%d, want 256x128", tile.Width, tile.Height)
	}

	if _, err := Single(filepath.Join(dir, "missing.png")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestDimensions(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "tex.png", 33, 17)

	w, h, err := Dimensions(path)
	if err != nil {
		t.Fatalf("Dimensions() error = %v", err)
	}
	if w != 33 || h != 17 {
		t.Errorf("Dimensions() = %dx%d, want 33x17", w, h)
	}
}

func TestFileInfo_Missing(t *testing.T) {
	info := FileInfo("/nope/missing_1001.png")
	if info.Exists {
		t.Error("Exists = true for missing file")
	}
	if info.Format != "png" {
		t.Errorf("Format = %q, want png", info.Format)
	}
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	pattern := filepath.Join(dir, "wall_<UDIM>.png")
	writePNG(t, dir, "wall_1001.png", 8, 8)

	before := Fingerprint(pattern)
	writePNG(t, dir, "wall_1002.png", 8, 8)
	after := Fingerprint(pattern)

	if before == after {
		t.Error("fingerprint unchanged after adding a tile")
	}
}
